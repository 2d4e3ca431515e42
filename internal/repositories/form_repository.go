package repositories

import (
	"context"

	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormRepository interface for form operations
type FormRepository interface {
	// Create assigns ID and timestamps before storing the form
	Create(ctx context.Context, form *models.Form) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Form, error)
	// Update replaces the stored form and refreshes UpdatedAt
	Update(ctx context.Context, form *models.Form) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// List returns one page, newest first, and the total matching count
	List(ctx context.Context, filters FormFilters) ([]*models.Form, int64, error)
}
