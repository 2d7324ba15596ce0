package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TemplatesCollection is the MongoDB collection holding template records.
const TemplatesCollection = "templates"

type mongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a Store backed by the templates collection of db.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{
		collection: db.Collection(TemplatesCollection),
	}
}

func (s *mongoStore) Get(ctx context.Context, id string) (*Template, error) {
	var t Template
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find template %s: %w", id, err)
	}
	return &t, nil
}

func (s *mongoStore) Put(ctx context.Context, id string, patch Patch) (*Template, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.ContractHTML != nil {
		set["contractHtml"] = *patch.ContractHTML
	}
	if patch.Questionnaire != nil {
		set["questionnaire"] = *patch.Questionnaire
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var t Template
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&t)
	if err != nil {
		return nil, fmt.Errorf("update template %s: %w", id, err)
	}
	return &t, nil
}
