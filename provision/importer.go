package main

import (
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"
	log "github.com/sirupsen/logrus"

	"github.com/jerryola1/evergreen/domain"
)

const dataFilePattern = "*_businesses_*.csv"

// csvRow mirrors one extractor output row. Spice and oil runs name their
// priority column differently; whichever is present wins. Columns the
// dashboard never shows (Email, Rating, ...) are ignored.
type csvRow struct {
	Name          string   `csv:"Business Name"`
	SpicePriority string   `csv:"Spice Priority"`
	OilPriority   string   `csv:"Oil Priority"`
	Priority      string   `csv:"Priority"`
	CuisineType   string   `csv:"Cuisine Type"`
	Address       string   `csv:"Address"`
	Postcode      string   `csv:"Postcode"`
	Phone         string   `csv:"Phone"`
	Website       string   `csv:"Website"`
	Borough       string   `csv:"Borough"`
	Latitude      *float64 `csv:"Latitude"`
	Longitude     *float64 `csv:"Longitude"`
	Source        string   `csv:"Source"`
}

// importCSVFiles walks dataDir for extractor CSVs and returns the cleaned,
// deduplicated, name-sorted lead list. Unreadable files are skipped so one
// bad extraction run cannot block the whole import.
func importCSVFiles(dataDir string) ([]domain.Business, error) {
	var all []domain.Business
	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(dataFilePattern, d.Name()); !ok {
			return nil
		}
		rows, err := readRows(path)
		if err != nil {
			log.Warnf("skipping %s: %v", path, err)
			return nil
		}
		leadType := leadTypeForFile(path)
		borough := boroughForFile(path)
		for _, r := range rows {
			b, ok := businessFromRow(r, leadType, borough)
			if !ok {
				continue
			}
			all = append(all, b)
		}
		log.Debugf("read %d rows from %s", len(rows), path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dataDir, err)
	}

	deduped := dedupe(all)
	sort.Slice(deduped, func(i, j int) bool { return deduped[i].Name < deduped[j].Name })
	return deduped, nil
}

func readRows(path string) ([]csvRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	dec, err := csvutil.NewDecoder(csv.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var rows []csvRow
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

// leadTypeForFile keys off the file stem: spice extractions carry "spice",
// cooking-oil extractions carry "oil", anything else is a general lead.
func leadTypeForFile(path string) string {
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	switch {
	case strings.Contains(stem, "spice"):
		return domain.LeadTypeSpice
	case strings.Contains(stem, "oil"):
		return domain.LeadTypeOil
	default:
		return domain.LeadTypeGeneral
	}
}

// boroughForFile infers the borough from anywhere in the path, matching the
// extractors' data/hackney and data/haringey layout.
func boroughForFile(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, "hackney"):
		return "Hackney"
	case strings.Contains(lower, "haringey"):
		return "Haringey"
	default:
		return "Other"
	}
}

func businessFromRow(r csvRow, leadType, borough string) (domain.Business, bool) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return domain.Business{}, false
	}

	if r.Borough != "" {
		borough = r.Borough
	}

	priority := normalizePriority(firstNonEmpty(r.Priority, r.SpicePriority, r.OilPriority))
	if priority == "" {
		priority = domain.ClassifyPriority(leadType, name, r.CuisineType)
	}

	return domain.Business{
		Name:          name,
		Priority:      priority,
		LeadType:      leadType,
		Borough:       borough,
		Postcode:      district(r.Postcode),
		Address:       strings.TrimSpace(r.Address),
		Phone:         strings.TrimSpace(r.Phone),
		Website:       strings.TrimSpace(r.Website),
		CuisineType:   strings.TrimSpace(r.CuisineType),
		Category:      domain.Categorize(name, r.CuisineType),
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		Source:        strings.TrimSpace(r.Source),
		Contacted:     false,
		ContactedDate: "",
		ContactNotes:  "",
	}, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func normalizePriority(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case domain.PriorityHigh:
		return domain.PriorityHigh
	case domain.PriorityMedium:
		return domain.PriorityMedium
	case domain.PriorityLow:
		return domain.PriorityLow
	default:
		return ""
	}
}

// district reduces a full postcode to its outward district: "N15 4QD" -> "N15".
func district(postcode string) string {
	fields := strings.Fields(postcode)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// dedupe collapses rows describing the same venue across extraction runs.
// The key is the normalized name plus the first address segment; the row
// with the most contact information wins, ties keep the first seen.
func dedupe(businesses []domain.Business) []domain.Business {
	index := make(map[string]int, len(businesses))
	out := make([]domain.Business, 0, len(businesses))
	for _, b := range businesses {
		key := dedupeKey(b)
		if i, ok := index[key]; ok {
			if infoScore(b) > infoScore(out[i]) {
				out[i] = b
			}
			continue
		}
		index[key] = len(out)
		out = append(out, b)
	}
	return out
}

func dedupeKey(b domain.Business) string {
	addressKey := b.Address
	if i := strings.Index(addressKey, ","); i >= 0 {
		addressKey = addressKey[:i]
	}
	return normalizeKeyText(b.Name) + "_" + normalizeKeyText(addressKey)
}

func normalizeKeyText(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func infoScore(b domain.Business) int {
	score := 0
	if b.Phone != "" {
		score++
	}
	if b.Website != "" {
		score++
	}
	if b.Priority == domain.PriorityHigh {
		score++
	}
	return score
}
