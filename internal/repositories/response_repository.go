package repositories

import (
	"context"

	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResponseRepository interface for form response operations. Lookups are
// always scoped to the owning form.
type ResponseRepository interface {
	Create(ctx context.Context, response *models.FormResponse) error
	GetByID(ctx context.Context, formID, id primitive.ObjectID) (*models.FormResponse, error)
	// UpdateScore persists Score, MaxScore, Breakdown and RescoredAt only
	UpdateScore(ctx context.Context, response *models.FormResponse) error
	Delete(ctx context.Context, formID, id primitive.ObjectID) error
	DeleteByForm(ctx context.Context, formID primitive.ObjectID) (int64, error)

	// ListByForm returns one page, newest first, and the total count
	ListByForm(ctx context.Context, formID primitive.ObjectID, filters ResponseFilters) ([]*models.FormResponse, int64, error)
	// ListAllByForm returns every response oldest first
	ListAllByForm(ctx context.Context, formID primitive.ObjectID) ([]*models.FormResponse, error)
	// ScoreSummaries returns every response of the form with only Score,
	// MaxScore and TimeSpent populated
	ScoreSummaries(ctx context.Context, formID primitive.ObjectID) ([]models.FormResponse, error)
}
