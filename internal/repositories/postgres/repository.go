package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/form-builder-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the PostgreSQL storage backend. Question and answer trees
// are stored as jsonb columns.
type Repository struct {
	db        *gorm.DB
	forms     *FormPostgreSQL
	responses *ResponsePostgreSQL
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:        db,
		forms:     NewFormPostgreSQL(db),
		responses: NewResponsePostgreSQL(db),
	}
}

func (r *Repository) Forms() repositories.FormRepository {
	return r.forms
}

func (r *Repository) Responses() repositories.ResponseRepository {
	return r.responses
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&formRecord{}, &responseRecord{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func paginate(limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if offset > 0 {
			db = db.Offset(offset)
		}
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	}
}
