package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukgarage/garage-manager/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrServiceNotFound = errors.New("service not found")

// ServiceCollection defines the interface for service catalog operations.
type ServiceCollection interface {
	InsertService(ctx context.Context, service models.Service) (*models.Service, error)
	FindServices(ctx context.Context, filter bson.M) ([]models.Service, error)
	FindServiceByID(ctx context.Context, id string) (*models.Service, error)
	FindServicesByIDs(ctx context.Context, ids []string) ([]models.Service, error)
	UpdateService(ctx context.Context, id string, service models.Service) error
	DeleteService(ctx context.Context, id string) error
}

// MongoServiceCollection implements ServiceCollection for MongoDB.
type MongoServiceCollection struct {
	Collection *mongo.Collection
}

// InsertService inserts a service record into the collection.
func (c *MongoServiceCollection) InsertService(ctx context.Context, service models.Service) (*models.Service, error) {
	service.ID = primitive.NewObjectID()
	service.CreatedAt = time.Now()
	service.UpdatedAt = time.Now()
	if _, err := c.Collection.InsertOne(ctx, service); err != nil {
		return nil, err
	}
	return &service, nil
}

// FindServices queries service records from the collection.
func (c *MongoServiceCollection) FindServices(ctx context.Context, filter bson.M) ([]models.Service, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// FindServiceByID finds a service by its ID.
func (c *MongoServiceCollection) FindServiceByID(ctx context.Context, id string) (*models.Service, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid service ID: %w", err)
	}

	var service models.Service
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&service)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &service, nil
}

// FindServicesByIDs resolves a list of service IDs, preserving the caller's
// selection order. Any missing ID fails the whole lookup with
// ErrServiceNotFound.
func (c *MongoServiceCollection) FindServicesByIDs(ctx context.Context, ids []string) ([]models.Service, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("invalid service ID %q: %w", id, err)
		}
		objectIDs = append(objectIDs, objectID)
	}

	found, err := c.FindServices(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.Service, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}

	services := make([]models.Service, 0, len(objectIDs))
	for i, objectID := range objectIDs {
		s, ok := byID[objectID]
		if !ok {
			return nil, fmt.Errorf("service %s: %w", ids[i], ErrServiceNotFound)
		}
		services = append(services, s)
	}
	return services, nil
}

// UpdateService updates a service by its ID.
func (c *MongoServiceCollection) UpdateService(ctx context.Context, id string, service models.Service) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid service ID: %w", err)
	}

	service.UpdatedAt = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": service})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// DeleteService deletes a service by its ID.
func (c *MongoServiceCollection) DeleteService(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid service ID: %w", err)
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrServiceNotFound
	}
	return nil
}
