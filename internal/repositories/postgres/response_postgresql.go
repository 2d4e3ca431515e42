package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"github.com/SAP-F-2025/form-builder-service/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) *ResponsePostgreSQL {
	return &ResponsePostgreSQL{db: db}
}

func (r *ResponsePostgreSQL) Create(ctx context.Context, response *models.FormResponse) error {
	now := time.Now().UTC()
	response.ID = primitive.NewObjectID()
	response.CreatedAt = now
	response.UpdatedAt = now
	if response.SubmittedAt.IsZero() {
		response.SubmittedAt = now
	}

	record, err := toResponseRecord(response)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create response: %w", err)
	}
	return nil
}

func (r *ResponsePostgreSQL) GetByID(ctx context.Context, formID, id primitive.ObjectID) (*models.FormResponse, error) {
	var record responseRecord
	err := r.db.WithContext(ctx).
		Where("id = ? AND form_id = ?", id.Hex(), formID.Hex()).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("response %s: %w", id.Hex(), repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return record.toModel()
}

func (r *ResponsePostgreSQL) UpdateScore(ctx context.Context, response *models.FormResponse) error {
	response.UpdatedAt = time.Now().UTC()

	record, err := toResponseRecord(response)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&responseRecord{}).
		Where("id = ? AND form_id = ?", record.ID, record.FormID).
		Updates(map[string]interface{}{
			"score":       record.Score,
			"max_score":   record.MaxScore,
			"breakdown":   record.Breakdown,
			"rescored_at": record.RescoredAt,
			"updated_at":  record.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update response score: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("response %s: %w", record.ID, repositories.ErrNotFound)
	}
	return nil
}

func (r *ResponsePostgreSQL) Delete(ctx context.Context, formID, id primitive.ObjectID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND form_id = ?", id.Hex(), formID.Hex()).
		Delete(&responseRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete response: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("response %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	return nil
}

func (r *ResponsePostgreSQL) DeleteByForm(ctx context.Context, formID primitive.ObjectID) (int64, error) {
	result := r.db.WithContext(ctx).Where("form_id = ?", formID.Hex()).Delete(&responseRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete form responses: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *ResponsePostgreSQL) ListByForm(ctx context.Context, formID primitive.ObjectID, filters repositories.ResponseFilters) ([]*models.FormResponse, int64, error) {
	query := r.db.WithContext(ctx).Model(&responseRecord{}).Where("form_id = ?", formID.Hex())

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count responses: %w", err)
	}

	var records []responseRecord
	if err := query.Scopes(paginate(filters.Limit, filters.Offset)).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list responses: %w", err)
	}

	responses, err := toResponseModels(records)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

func (r *ResponsePostgreSQL) ListAllByForm(ctx context.Context, formID primitive.ObjectID) ([]*models.FormResponse, error) {
	var records []responseRecord
	if err := r.db.WithContext(ctx).
		Where("form_id = ?", formID.Hex()).
		Order("submitted_at ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return toResponseModels(records)
}

func (r *ResponsePostgreSQL) ScoreSummaries(ctx context.Context, formID primitive.ObjectID) ([]models.FormResponse, error) {
	var records []responseRecord
	if err := r.db.WithContext(ctx).
		Select("score", "max_score", "time_spent").
		Where("form_id = ?", formID.Hex()).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load score summaries: %w", err)
	}

	summaries := make([]models.FormResponse, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, models.FormResponse{
			Score:     rec.Score,
			MaxScore:  rec.MaxScore,
			TimeSpent: rec.TimeSpent,
		})
	}
	return summaries, nil
}

func toResponseModels(records []responseRecord) ([]*models.FormResponse, error) {
	responses := make([]*models.FormResponse, 0, len(records))
	for i := range records {
		resp, err := records[i].toModel()
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}
