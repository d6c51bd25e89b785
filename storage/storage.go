package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"github.com/jerryola1/evergreen/domain"
)

// businessPartition is the single partition every lead lives in; reads are
// always full-partition scans.
const businessPartition = "business"

const edmDouble = "Edm.Double"

// TableStore reads and writes leads in an Azure Storage table. RowKey is the
// business name with characters Azure rejects replaced; the Name column keeps
// the display form.
type TableStore struct {
	service *aztables.ServiceClient
	table   *aztables.Client
	name    string
	now     func() time.Time
}

// NewTableStore creates a TableStore from the given connection string.
// Failed calls surface immediately; nothing retries on the caller's behalf.
func NewTableStore(connStr, table string) (*TableStore, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{MaxRetries: -1},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &TableStore{service: svc, table: svc.NewClient(table), name: table, now: time.Now}, nil
}

type businessEntity struct {
	aztables.Entity
	Name          string   `json:"Name,omitempty"`
	Priority      string   `json:"Priority,omitempty"`
	LeadType      string   `json:"LeadType,omitempty"`
	Borough       string   `json:"Borough,omitempty"`
	Postcode      string   `json:"Postcode,omitempty"`
	Address       string   `json:"Address,omitempty"`
	Phone         string   `json:"Phone,omitempty"`
	Website       string   `json:"Website,omitempty"`
	CuisineType   string   `json:"CuisineType,omitempty"`
	Category      string   `json:"Category,omitempty"`
	Latitude      *float64 `json:"Latitude,omitempty"`
	LatitudeType  string   `json:"Latitude@odata.type,omitempty"`
	Longitude     *float64 `json:"Longitude,omitempty"`
	LongitudeType string   `json:"Longitude@odata.type,omitempty"`
	Source        string   `json:"Source,omitempty"`
	Contacted     bool     `json:"Contacted"`
	ContactedDate string   `json:"ContactedDate,omitempty"`
	ContactNotes  string   `json:"ContactNotes,omitempty"`
}

// businessContactUpdate is the merge payload for a contact edit. All three
// columns are always written so un-contacting clears the stale date and notes.
type businessContactUpdate struct {
	aztables.Entity
	Contacted     bool   `json:"Contacted"`
	ContactedDate string `json:"ContactedDate"`
	ContactNotes  string `json:"ContactNotes"`
}

// rowKeySanitizer strips the characters the table service rejects in keys.
var rowKeySanitizer = strings.NewReplacer("/", "-", "\\", "-", "#", "-", "?", "-")

func rowKeyForName(name string) string {
	return rowKeySanitizer.Replace(name)
}

func encodeBusinessEntity(b domain.Business) businessEntity {
	ent := businessEntity{
		Entity:        aztables.Entity{PartitionKey: businessPartition, RowKey: rowKeyForName(b.Name)},
		Name:          b.Name,
		Priority:      b.Priority,
		LeadType:      b.LeadType,
		Borough:       b.Borough,
		Postcode:      b.Postcode,
		Address:       b.Address,
		Phone:         b.Phone,
		Website:       b.Website,
		CuisineType:   b.CuisineType,
		Category:      b.Category,
		Latitude:      b.Latitude,
		Longitude:     b.Longitude,
		Source:        b.Source,
		Contacted:     b.Contacted,
		ContactedDate: b.ContactedDate,
		ContactNotes:  b.ContactNotes,
	}
	if ent.Latitude != nil {
		ent.LatitudeType = edmDouble
	}
	if ent.Longitude != nil {
		ent.LongitudeType = edmDouble
	}
	return ent
}

func decodeBusinessEntity(data []byte) (domain.Business, error) {
	var ent businessEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.Business{}, fmt.Errorf("decode business entity: %w", err)
	}
	name := ent.Name
	if name == "" {
		name = ent.RowKey
	}
	return domain.Business{
		Name:          name,
		Priority:      ent.Priority,
		LeadType:      ent.LeadType,
		Borough:       ent.Borough,
		Postcode:      ent.Postcode,
		Address:       ent.Address,
		Phone:         ent.Phone,
		Website:       ent.Website,
		CuisineType:   ent.CuisineType,
		Category:      ent.Category,
		Latitude:      ent.Latitude,
		Longitude:     ent.Longitude,
		Source:        ent.Source,
		Contacted:     ent.Contacted,
		ContactedDate: ent.ContactedDate,
		ContactNotes:  ent.ContactNotes,
	}, nil
}

// FetchBusinesses retrieves every lead, sorted by name ascending. The sort is
// applied here so the contract holds regardless of row key ordering.
func (s *TableStore) FetchBusinesses(ctx context.Context) ([]domain.Business, error) {
	filter := "PartitionKey eq '" + businessPartition + "'"
	pager := s.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	businesses := []domain.Business{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, &domain.ConnectivityError{Op: "fetch businesses", Err: err}
		}
		for _, e := range resp.Entities {
			b, err := decodeBusinessEntity(e)
			if err != nil {
				return nil, err
			}
			businesses = append(businesses, b)
		}
	}
	sort.Slice(businesses, func(i, j int) bool { return businesses[i].Name < businesses[j].Name })
	return businesses, nil
}

func contactUpdateEntity(name string, upd domain.ContactUpdate, now time.Time) businessContactUpdate {
	ent := businessContactUpdate{
		Entity:       aztables.Entity{PartitionKey: businessPartition, RowKey: rowKeyForName(name)},
		Contacted:    upd.Contacted,
		ContactNotes: upd.Notes,
	}
	if upd.Contacted {
		ent.ContactedDate = now.Format("2006-01-02")
	}
	return ent
}

// UpdateContact merges the contact columns of the named lead. The contact
// date is stamped with the current day when contacting and cleared otherwise.
func (s *TableStore) UpdateContact(ctx context.Context, name string, upd domain.ContactUpdate) error {
	payload, err := json.Marshal(contactUpdateEntity(name, upd, s.now()))
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = s.table.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &et, UpdateMode: aztables.UpdateModeMerge})
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == 404 {
			return domain.ErrNotFound
		}
		return &domain.ConnectivityError{Op: "update contact", Err: err}
	}
	return nil
}

// EnsureTable creates the backing table, tolerating an existing one.
func (s *TableStore) EnsureTable(ctx context.Context) error {
	_, err := s.service.CreateTable(ctx, s.name, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists) {
			return nil
		}
		return err
	}
	return nil
}

// Seed upserts the given leads, used by provisioning.
func (s *TableStore) Seed(ctx context.Context, businesses []domain.Business) error {
	for _, b := range businesses {
		payload, err := json.Marshal(encodeBusinessEntity(b))
		if err != nil {
			return err
		}
		if _, err := s.table.UpsertEntity(ctx, payload, nil); err != nil {
			return fmt.Errorf("seed %q: %w", b.Name, err)
		}
	}
	return nil
}
