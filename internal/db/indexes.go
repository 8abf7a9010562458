package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the application queries depend on.
// Index creation is idempotent; existing identical indexes are no-ops.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	listings := database.Collection("listings")

	// Weighted text index backing full-text search. Weights favor the
	// listing name, then address and status, then descriptive fields.
	textIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "projectName", Value: "text"},
			{Key: "projectAddress", Value: "text"},
			{Key: "project_discripation", Value: "text"},
			{Key: "type", Value: "text"},
			{Key: "city", Value: "text"},
			{Key: "state", Value: "text"},
			{Key: "project_Status", Value: "text"},
			{Key: "builderName", Value: "text"},
		},
		Options: options.Index().
			SetName("listing_text_search").
			SetWeights(bson.M{
				"projectName":          6,
				"projectAddress":       3,
				"project_discripation": 2,
				"type":                 3,
				"city":                 2,
				"state":                2,
				"project_Status":       3,
				"builderName":          1,
			}),
	}

	listingIndexes := []mongo.IndexModel{
		textIndex,
		{Keys: bson.D{{Key: "schema_type", Value: 1}, {Key: "city", Value: 1}, {Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "minPrice", Value: 1}, {Key: "maxPrice", Value: 1}}},
		{Keys: bson.D{{Key: "project_Status", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "launchingDate", Value: 1}}},
		{Keys: bson.D{{Key: "priority", Value: -1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
		{
			Keys:    bson.D{{Key: "project_url", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
	if _, err := listings.Indexes().CreateMany(ctx, listingIndexes); err != nil {
		return fmt.Errorf("failed to create listing indexes: %w", err)
	}

	accounts := database.Collection("accounts")
	accountIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := accounts.Indexes().CreateMany(ctx, accountIndexes); err != nil {
		return fmt.Errorf("failed to create account indexes: %w", err)
	}

	return nil
}
