// server/internal/database/delivery_store.go
package database

import (
	"context"
	"time"

	"bill-delivery-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DeliveryStore is the Mongo-backed store behind the delivery recorder.
type DeliveryStore struct {
	DB *mongo.Database
}

func NewDeliveryStore(db *mongo.Database) *DeliveryStore {
	return &DeliveryStore{DB: db}
}

// FindProperty returns (nil, nil) when the property does not exist.
func (s *DeliveryStore) FindProperty(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var property models.Property
	err := s.DB.Collection("properties").FindOne(ctx, bson.M{"_id": id}).Decode(&property)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (s *DeliveryStore) HasDelivery(ctx context.Context, propertyID string) (bool, error) {
	count, err := s.DB.Collection("deliveries").CountDocuments(ctx, bson.M{"propertyID": propertyID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ZoneOfWard returns "" for an unknown or unparseable ward id.
func (s *DeliveryStore) ZoneOfWard(ctx context.Context, wardID string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(wardID)
	if err != nil {
		return "", nil
	}
	var ward models.Ward
	err = s.DB.Collection("wards").FindOne(ctx, bson.M{"_id": oid}).Decode(&ward)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return ward.Zone, nil
}

func (s *DeliveryStore) InsertDelivery(ctx context.Context, d *models.Delivery) (primitive.ObjectID, error) {
	result, err := s.DB.Collection("deliveries").InsertOne(ctx, d)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

func (s *DeliveryStore) SetPropertyStatus(ctx context.Context, id primitive.ObjectID, status string, at time.Time) error {
	_, err := s.DB.Collection("properties").UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": at,
	}})
	return err
}
