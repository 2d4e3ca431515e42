package repositories

import (
	"context"
)

// ===== SHARED FILTER STRUCTS =====

type FormFilters struct {
	Search string `json:"search"` // case-insensitive match on title or description
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type ResponseFilters struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Repository groups the repositories of one storage backend.
type Repository interface {
	Forms() FormRepository
	Responses() ResponseRepository

	// EnsureSchema creates indexes or tables the backend needs.
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
