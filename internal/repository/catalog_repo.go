package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatform/internal/model"
)

type CatalogRepo interface {
	// Load returns every question definition ordered by priority
	Load(ctx context.Context) ([]model.QuestionDefinition, error)

	// Replace swaps the stored catalog for the given definitions
	Replace(ctx context.Context, defs []model.QuestionDefinition) error
}

type catalogRepo struct {
	collection *mongo.Collection
}

func NewCatalogRepo(client *mongo.Client) CatalogRepo {
	db := client.Database("chatform")
	return &catalogRepo{
		collection: db.Collection("questions"),
	}
}

func (r *catalogRepo) Load(ctx context.Context) ([]model.QuestionDefinition, error) {
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var defs []model.QuestionDefinition
	if err = cursor.All(ctx, &defs); err != nil {
		return nil, err
	}

	return defs, nil
}

func (r *catalogRepo) Replace(ctx context.Context, defs []model.QuestionDefinition) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}

	docs := make([]interface{}, 0, len(defs))
	for _, d := range defs {
		docs = append(docs, d)
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}
