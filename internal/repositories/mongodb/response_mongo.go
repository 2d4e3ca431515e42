package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/form-builder-service/internal/models"
	"github.com/SAP-F-2025/form-builder-service/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ResponseMongo struct {
	col *mongo.Collection
}

func NewResponseMongo(db *mongo.Database) *ResponseMongo {
	return &ResponseMongo{col: db.Collection(responsesCollection)}
}

func (r *ResponseMongo) Create(ctx context.Context, response *models.FormResponse) error {
	now := time.Now().UTC()
	response.ID = primitive.NewObjectID()
	response.CreatedAt = now
	response.UpdatedAt = now
	if response.SubmittedAt.IsZero() {
		response.SubmittedAt = now
	}

	if _, err := r.col.InsertOne(ctx, response); err != nil {
		return fmt.Errorf("failed to create response: %w", err)
	}
	return nil
}

func (r *ResponseMongo) GetByID(ctx context.Context, formID, id primitive.ObjectID) (*models.FormResponse, error) {
	var response models.FormResponse
	err := r.col.FindOne(ctx, bson.M{"_id": id, "formId": formID}).Decode(&response)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("response %s: %w", id.Hex(), repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return &response, nil
}

func (r *ResponseMongo) UpdateScore(ctx context.Context, response *models.FormResponse) error {
	response.UpdatedAt = time.Now().UTC()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": response.ID, "formId": response.FormID},
		bson.M{"$set": bson.M{
			"score":      response.Score,
			"maxScore":   response.MaxScore,
			"breakdown":  response.Breakdown,
			"rescoredAt": response.RescoredAt,
			"updatedAt":  response.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update response score: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("response %s: %w", response.ID.Hex(), repositories.ErrNotFound)
	}
	return nil
}

func (r *ResponseMongo) Delete(ctx context.Context, formID, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "formId": formID})
	if err != nil {
		return fmt.Errorf("failed to delete response: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("response %s: %w", id.Hex(), repositories.ErrNotFound)
	}
	return nil
}

func (r *ResponseMongo) DeleteByForm(ctx context.Context, formID primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"formId": formID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete form responses: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *ResponseMongo) ListByForm(ctx context.Context, formID primitive.ObjectID, filters repositories.ResponseFilters) ([]*models.FormResponse, int64, error) {
	filter := bson.M{"formId": formID}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count responses: %w", err)
	}

	cur, err := r.col.Find(ctx, filter, pageOptions(filters.Limit, filters.Offset))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list responses: %w", err)
	}

	responses := make([]*models.FormResponse, 0, filters.Limit)
	if err := cur.All(ctx, &responses); err != nil {
		return nil, 0, fmt.Errorf("failed to decode responses: %w", err)
	}
	return responses, total, nil
}

func (r *ResponseMongo) ListAllByForm(ctx context.Context, formID primitive.ObjectID) ([]*models.FormResponse, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"formId": formID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	responses := make([]*models.FormResponse, 0)
	if err := cur.All(ctx, &responses); err != nil {
		return nil, fmt.Errorf("failed to decode responses: %w", err)
	}
	return responses, nil
}

func (r *ResponseMongo) ScoreSummaries(ctx context.Context, formID primitive.ObjectID) ([]models.FormResponse, error) {
	opts := options.Find().SetProjection(bson.M{"score": 1, "maxScore": 1, "timeSpent": 1})
	cur, err := r.col.Find(ctx, bson.M{"formId": formID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load score summaries: %w", err)
	}

	summaries := make([]models.FormResponse, 0)
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode score summaries: %w", err)
	}
	return summaries, nil
}
