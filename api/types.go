package api

import (
	"context"

	"github.com/jerryola1/evergreen/domain"
)

// Store abstracts the remote lead store for handlers.
type Store interface {
	FetchBusinesses(ctx context.Context) ([]domain.Business, error)
	UpdateContact(ctx context.Context, name string, upd domain.ContactUpdate) error
}

// Snapshots owns the in-memory snapshot lifecycle for handlers.
type Snapshots interface {
	Current() *domain.Snapshot
	Load(ctx context.Context) (*domain.Snapshot, error)
	Reload(ctx context.Context) (*domain.Snapshot, error)
}

// Authenticator is implemented by types able to vet request credentials.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type reloadResponse struct {
	Status        string `json:"status"`
	BusinessCount int    `json:"businessCount"`
}

type healthResponse struct {
	Status        string `json:"status"`
	Backend       string `json:"backend"`
	DataLoaded    bool   `json:"dataLoaded"`
	BusinessCount int    `json:"businessCount"`
}
