package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"github.com/SAP-F-2025/form-builder-service/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type FormMongo struct {
	col *mongo.Collection
}

func NewFormMongo(db *mongo.Database) *FormMongo {
	return &FormMongo{col: db.Collection(formsCollection)}
}

func (r *FormMongo) Create(ctx context.Context, form *models.Form) error {
	now := time.Now().UTC()
	form.ID = primitive.NewObjectID()
	form.CreatedAt = now
	form.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, form); err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}
	return nil
}

func (r *FormMongo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Form, error) {
	var form models.Form
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&form); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("form %s: %w", id.Hex(), repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	return &form, nil
}

func (r *FormMongo) Update(ctx context.Context, form *models.Form) error {
	form.UpdatedAt = time.Now().UTC()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": form.ID}, form)
	if err != nil {
		return fmt.Errorf("failed to update form: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("form %s: %w", form.ID.Hex(), repositories.ErrNotFound)
	}
	return nil
}

func (r *FormMongo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("form %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	return nil
}

func (r *FormMongo) List(ctx context.Context, filters repositories.FormFilters) ([]*models.Form, int64, error) {
	filter := searchFilter(filters.Search)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count forms: %w", err)
	}

	cur, err := r.col.Find(ctx, filter, pageOptions(filters.Limit, filters.Offset))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list forms: %w", err)
	}
	defer cur.Close(ctx)

	forms := make([]*models.Form, 0, filters.Limit)
	for cur.Next(ctx) {
		var form models.Form
		if err := cur.Decode(&form); err != nil {
			return nil, 0, fmt.Errorf("failed to decode form: %w", err)
		}
		forms = append(forms, &form)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list forms: %w", err)
	}
	return forms, total, nil
}

// searchFilter matches the search term literally, ignoring case, in the
// title or the description.
func searchFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"title": pattern},
		bson.M{"description": pattern},
	}}
}
