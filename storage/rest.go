package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/jerryola1/evergreen/domain"
)

// RestStore talks to an upstream HTTP service exposing the same lead
// contract. It performs no retries; transport failures surface as
// connectivity errors.
type RestStore struct {
	base   string
	client *http.Client
}

// NewRestStore creates a RestStore for the given base URL. A nil client uses
// http.DefaultClient; timeouts belong to the caller's context.
func NewRestStore(base string, client *http.Client) *RestStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &RestStore{base: strings.TrimRight(base, "/"), client: client}
}

type contactRequest struct {
	Contacted bool   `json:"contacted"`
	Notes     string `json:"notes"`
}

// FetchBusinesses retrieves every lead from the upstream, sorted by name
// ascending regardless of the order the upstream answered with.
func (s *RestStore) FetchBusinesses(ctx context.Context) ([]domain.Business, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+"/api/businesses", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.ConnectivityError{Op: "fetch businesses", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ConnectivityError{Op: "fetch businesses", Err: fmt.Errorf("upstream status %d", resp.StatusCode)}
	}
	var businesses []domain.Business
	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(&businesses); err != nil {
		return nil, fmt.Errorf("decode business list: %w", err)
	}
	sort.Slice(businesses, func(i, j int) bool { return businesses[i].Name < businesses[j].Name })
	return businesses, nil
}

// UpdateContact patches the contact fields of the named lead on the upstream.
func (s *RestStore) UpdateContact(ctx context.Context, name string, upd domain.ContactUpdate) error {
	payload, err := sonic.Marshal(contactRequest{Contacted: upd.Contacted, Notes: upd.Notes})
	if err != nil {
		return err
	}
	target := s.base + "/api/businesses/" + url.PathEscape(name) + "/contact"
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, target, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &domain.ConnectivityError{Op: "update contact", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode >= 500:
		return &domain.ConnectivityError{Op: "update contact", Err: fmt.Errorf("upstream status %d", resp.StatusCode)}
	default:
		return fmt.Errorf("update contact: upstream status %d", resp.StatusCode)
	}
}
