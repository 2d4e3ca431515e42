package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"github.com/SAP-F-2025/form-builder-service/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

type FormPostgreSQL struct {
	db *gorm.DB
}

func NewFormPostgreSQL(db *gorm.DB) *FormPostgreSQL {
	return &FormPostgreSQL{db: db}
}

func (f *FormPostgreSQL) Create(ctx context.Context, form *models.Form) error {
	now := time.Now().UTC()
	form.ID = primitive.NewObjectID()
	form.CreatedAt = now
	form.UpdatedAt = now

	record, err := toFormRecord(form)
	if err != nil {
		return err
	}
	if err := f.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}
	return nil
}

func (f *FormPostgreSQL) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Form, error) {
	var record formRecord
	if err := f.db.WithContext(ctx).Where("id = ?", id.Hex()).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("form %s: %w", id.Hex(), repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	return record.toModel()
}

func (f *FormPostgreSQL) Update(ctx context.Context, form *models.Form) error {
	form.UpdatedAt = time.Now().UTC()

	record, err := toFormRecord(form)
	if err != nil {
		return err
	}

	result := f.db.WithContext(ctx).
		Model(&formRecord{}).
		Where("id = ?", record.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(record)
	if result.Error != nil {
		return fmt.Errorf("failed to update form: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("form %s: %w", record.ID, repositories.ErrNotFound)
	}
	return nil
}

func (f *FormPostgreSQL) Delete(ctx context.Context, id primitive.ObjectID) error {
	result := f.db.WithContext(ctx).Where("id = ?", id.Hex()).Delete(&formRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete form: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("form %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	return nil
}

func (f *FormPostgreSQL) List(ctx context.Context, filters repositories.FormFilters) ([]*models.Form, int64, error) {
	query := f.db.WithContext(ctx).Model(&formRecord{})
	if filters.Search != "" {
		pattern := "%" + escapeLike(filters.Search) + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count forms: %w", err)
	}

	var records []formRecord
	if err := query.Scopes(paginate(filters.Limit, filters.Offset)).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list forms: %w", err)
	}

	forms := make([]*models.Form, 0, len(records))
	for i := range records {
		form, err := records[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		forms = append(forms, form)
	}
	return forms, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
