package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "silvalley/internal/bookings/errors"
	"silvalley/pkg/config"
	"silvalley/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SpaceLedger is the booking side's view of the Spaces collection: it only
// reads a space and moves desks in and out of the available pool. The catalog
// CRUD stays with the spaces domain.
type SpaceLedger interface {
	GetSpace(ctx context.Context, spaceID string) (*model.Space, error)
	DecrementIfAvailable(ctx context.Context, spaceID string, seats int) error
	Restore(ctx context.Context, spaceID string, seats int) error
}

type mongoSpaceLedger struct {
	cfg        *config.Config
	collection *mongo.Collection
}

const spacesCollectionName = "Spaces"

func NewMongoSpaceLedger(cfg *config.Config) SpaceLedger {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSpaceLedger{
		cfg:        cfg,
		collection: db.Collection(spacesCollectionName),
	}
}

func (l *mongoSpaceLedger) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (l *mongoSpaceLedger) GetSpace(ctx context.Context, spaceID string) (*model.Space, error) {
	ctx, cancel := l.withTimeout(ctx, l.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(spaceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrSpaceNotFound, spaceID)
	}

	var space model.Space
	err = l.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&space)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrSpaceNotFound, spaceID)
		}
		return nil, fmt.Errorf("failed to find space: %w", err)
	}
	return &space, nil
}

// DecrementIfAvailable takes seats out of the pool with a conditional update:
// the filter only matches when enough desks remain, so two concurrent
// submissions can never drive the count negative.
func (l *mongoSpaceLedger) DecrementIfAvailable(ctx context.Context, spaceID string, seats int) error {
	ctx, cancel := l.withTimeout(ctx, l.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(spaceID)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrSpaceNotFound, spaceID)
	}

	result, err := l.collection.UpdateOne(ctx,
		bson.M{
			"_id":             objectID,
			"available_desks": bson.M{"$gte": seats},
		},
		bson.M{"$inc": bson.M{"available_desks": -seats}},
	)
	if err != nil {
		return fmt.Errorf("failed to reserve desks: %w", err)
	}

	if result.MatchedCount == 0 {
		count, err := l.collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if err != nil {
			return fmt.Errorf("failed to check space existence: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", bookingserrors.ErrSpaceNotFound, spaceID)
		}
		return fmt.Errorf("%w: space %s, requested %d", bookingserrors.ErrInsufficientAvailability, spaceID, seats)
	}

	return nil
}

func (l *mongoSpaceLedger) Restore(ctx context.Context, spaceID string, seats int) error {
	ctx, cancel := l.withTimeout(ctx, l.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(spaceID)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrSpaceNotFound, spaceID)
	}

	result, err := l.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$inc": bson.M{"available_desks": seats}},
	)
	if err != nil {
		return fmt.Errorf("failed to restore desks: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", bookingserrors.ErrSpaceNotFound, spaceID)
	}

	return nil
}
