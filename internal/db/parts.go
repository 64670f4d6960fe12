package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/ukgarage/garage-manager/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrPartNotFound      = errors.New("part not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// PartCollection defines the interface for part inventory operations.
// DeductStock is the only stock mutator exposed to the booking flow; setting
// a quantity directly is an admin-only edit through UpdatePart.
type PartCollection interface {
	InsertPart(ctx context.Context, part models.Part) error
	FindParts(ctx context.Context, filter bson.M) ([]models.Part, error)
	FindByNumberOrName(ctx context.Context, query string) (*models.Part, error)
	SearchParts(ctx context.Context, query string) ([]models.Part, error)
	UpdatePart(ctx context.Context, id string, part models.Part) error
	DeletePart(ctx context.Context, id string) error
	DeductStock(ctx context.Context, partNumber string, quantity int) (*models.Part, error)
}

// MongoPartCollection implements PartCollection for MongoDB.
type MongoPartCollection struct {
	Collection *mongo.Collection
}

// InsertPart inserts a part record into the collection.
func (c *MongoPartCollection) InsertPart(ctx context.Context, part models.Part) error {
	part.CreatedAt = time.Now()
	part.UpdatedAt = time.Now()
	part.UnitPrice = part.ResolveUnitPrice()
	_, err := c.Collection.InsertOne(ctx, part)
	return err
}

// FindParts queries part records from the collection.
func (c *MongoPartCollection) FindParts(ctx context.Context, filter bson.M) ([]models.Part, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var parts []models.Part
	if err := cursor.All(ctx, &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

// FindByNumberOrName finds a single part by exact part number or by a
// case-insensitive name match.
func (c *MongoPartCollection) FindByNumberOrName(ctx context.Context, query string) (*models.Part, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"part_number": query},
		bson.M{"name": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(query) + "$", Options: "i"}},
	}}

	var part models.Part
	err := c.Collection.FindOne(ctx, filter).Decode(&part)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPartNotFound
		}
		return nil, err
	}
	return &part, nil
}

// SearchParts finds parts whose number or name contains the query.
func (c *MongoPartCollection) SearchParts(ctx context.Context, query string) ([]models.Part, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"part_number": pattern},
		bson.M{"name": pattern},
	}}
	return c.FindParts(ctx, filter)
}

// UpdatePart updates a part by its ID. Admin-only edit path.
func (c *MongoPartCollection) UpdatePart(ctx context.Context, id string, part models.Part) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid part ID: %w", err)
	}

	part.UpdatedAt = time.Now()
	part.UnitPrice = part.ResolveUnitPrice()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": part})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrPartNotFound
	}
	return nil
}

// DeletePart deletes a part by its ID.
func (c *MongoPartCollection) DeletePart(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid part ID: %w", err)
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrPartNotFound
	}
	return nil
}

// DeductStock atomically decrements a part's on-hand quantity, but only when
// enough stock remains. The conditional filter makes the decrement a single
// compare-and-swap at the storage layer, so two concurrent bookings can
// never both deduct the last unit. Returns the part as it stands after the
// deduction.
func (c *MongoPartCollection) DeductStock(ctx context.Context, partNumber string, quantity int) (*models.Part, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("deduct quantity must be positive, got %d", quantity)
	}

	filter := bson.M{
		"part_number":      partNumber,
		"quantity_on_hand": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"quantity_on_hand": -quantity},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var part models.Part
	err := c.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&part)
	if err == nil {
		return &part, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// No match means either the part does not exist or stock was short;
	// the caller needs to tell the two apart.
	count, err := c.Collection.CountDocuments(ctx, bson.M{"part_number": partNumber})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrPartNotFound
	}
	return nil, ErrInsufficientStock
}
