package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatform/internal/model"
)

type SubmissionRepo interface {
	Create(ctx context.Context, submission *model.Submission) error
	GetBySessionID(ctx context.Context, sessionID string) (*model.Submission, error)
	GetAll(ctx context.Context) ([]*model.Submission, error)
}

type submissionRepo struct {
	collection *mongo.Collection
}

func NewSubmissionRepo(client *mongo.Client) SubmissionRepo {
	db := client.Database("chatform")
	return &submissionRepo{
		collection: db.Collection("submissions"),
	}
}

func (r *submissionRepo) Create(ctx context.Context, submission *model.Submission) error {
	if submission.ID == "" {
		submission.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.collection.InsertOne(ctx, submission)
	return err
}

func (r *submissionRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.Submission, error) {
	var submission model.Submission
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&submission)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Submission not found
		}
		return nil, err
	}

	return &submission, nil
}

func (r *submissionRepo) GetAll(ctx context.Context) ([]*model.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "savedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var submissions []*model.Submission
	if err = cursor.All(ctx, &submissions); err != nil {
		return nil, err
	}

	return submissions, nil
}
