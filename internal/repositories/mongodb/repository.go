package mongodb

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/form-builder-service/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	formsCollection     = "forms"
	responsesCollection = "formresponses"
)

// Repository is the MongoDB storage backend.
type Repository struct {
	client    *mongo.Client
	db        *mongo.Database
	forms     *FormMongo
	responses *ResponseMongo
}

func NewRepository(client *mongo.Client, database string) *Repository {
	db := client.Database(database)
	return &Repository{
		client:    client,
		db:        db,
		forms:     NewFormMongo(db),
		responses: NewResponseMongo(db),
	}
}

func (r *Repository) Forms() repositories.FormRepository {
	return r.forms
}

func (r *Repository) Responses() repositories.ResponseRepository {
	return r.responses
}

// EnsureSchema creates the indexes used by listing and lookups.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	formIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
	}
	if _, err := r.forms.col.Indexes().CreateMany(ctx, formIndexes); err != nil {
		return fmt.Errorf("failed to create form indexes: %w", err)
	}

	responseIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "formId", Value: 1}, {Key: "submittedAt", Value: -1}}},
		{Keys: bson.D{{Key: "formId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "submittedBy", Value: 1}}},
	}
	if _, err := r.responses.col.Indexes().CreateMany(ctx, responseIndexes); err != nil {
		return fmt.Errorf("failed to create response indexes: %w", err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func pageOptions(limit, offset int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}
