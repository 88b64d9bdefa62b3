package repository

import (
	"context"
	"fmt"

	"silvalley/pkg/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const usersCollectionName = "Users"

// BookingCounterRepository maintains the denormalized bookings_count on user
// documents. The notifier is its only writer, fed by the booking event stream,
// so the booking service never has to touch the Users collection.
type BookingCounterRepository interface {
	AdjustBookingsCount(ctx context.Context, userID string, delta int) error
}

type mongoBookingCounterRepository struct {
	cfg   *config.Config
	users *mongo.Collection
}

func NewMongoBookingCounterRepository(cfg *config.Config) BookingCounterRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingCounterRepository{
		cfg:   cfg,
		users: db.Collection(usersCollectionName),
	}
}

func (r *mongoBookingCounterRepository) AdjustBookingsCount(ctx context.Context, userID string, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	// The guard on negative counts keeps a replayed cancellation event from
	// driving the counter below zero.
	filter := bson.M{"_id": objectID}
	if delta < 0 {
		filter["bookings_count"] = bson.M{"$gte": -delta}
	}

	result, err := r.users.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"bookings_count": delta},
	})
	if err != nil {
		return fmt.Errorf("failed to adjust bookings count: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("no adjustable user for id %s (delta %d)", userID, delta)
	}

	return nil
}
