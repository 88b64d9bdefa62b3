package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	spaceserrors "silvalley/internal/spaces/errors"
	"silvalley/pkg/config"
	mongotx "silvalley/pkg/db/mongo"
	"silvalley/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Spaces"
)

type mongoSpaceRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type SpaceRepository interface {
	Create(ctx context.Context, space *model.Space) error
	FindByID(ctx context.Context, id string) (*model.Space, error)
	FindAll(ctx context.Context, filter *model.SpaceFilter, limit int, offset int64) ([]*model.Space, error)
	Count(ctx context.Context, filter *model.SpaceFilter) (int64, error)
	Update(ctx context.Context, id string, space *model.Space) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoSpaceRepository(cfg *config.Config) SpaceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSpaceRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoSpaceRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSpaceRepository) Create(ctx context.Context, space *model.Space) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	space.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, space)
	if err != nil {
		return fmt.Errorf("failed to create space: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		space.ID = oid.Hex()
	}

	return nil
}

func (r *mongoSpaceRepository) FindByID(ctx context.Context, id string) (*model.Space, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", spaceserrors.ErrInvalidID, id)
	}
	filter := bson.M{"_id": objectID}

	var space model.Space
	err = r.collection.FindOne(ctx, filter).Decode(&space)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", spaceserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find space: %w", err)
	}
	return &space, nil
}

func (r *mongoSpaceRepository) FindAll(ctx context.Context, filter *model.SpaceFilter, limit int, offset int64) ([]*model.Space, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, buildSpaceFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query spaces: %w", err)
	}
	defer cursor.Close(ctx)

	var spaces []*model.Space
	if err = cursor.All(ctx, &spaces); err != nil {
		return nil, fmt.Errorf("failed to decode spaces: %w", err)
	}

	return spaces, nil
}

func (r *mongoSpaceRepository) Count(ctx context.Context, filter *model.SpaceFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildSpaceFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count spaces: %w", err)
	}
	return count, nil
}

func (r *mongoSpaceRepository) Update(ctx context.Context, id string, space *model.Space) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", spaceserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$set": bson.M{
			"name":            space.Name,
			"location":        space.Location,
			"description":     space.Description,
			"price_per_day":   space.PricePerDay,
			"available_desks": space.AvailableDesks,
			"amenities":       space.Amenities,
			"rating":          space.Rating,
			"review_count":    space.ReviewCount,
			"image_url":       space.ImageURL,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update space: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", spaceserrors.ErrNotFound, id)
	}

	return result, nil
}

func (r *mongoSpaceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", spaceserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete space: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", spaceserrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoSpaceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// buildSpaceFilter translates a catalog filter into a Mongo query document.
// Categories compose with AND; the free-text search is a case-insensitive
// substring match on the name only, and every requested amenity flag must be
// set on the document.
func buildSpaceFilter(f *model.SpaceFilter) bson.M {
	if f.IsZero() {
		return bson.M{}
	}

	query := bson.M{}

	if f.Search != "" {
		query["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}

	if f.Location != "" {
		query["location"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Location), Options: "i"}
	}

	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		query["price_per_day"] = price
	}

	for _, amenity := range f.Amenities {
		query["amenities."+amenity] = true
	}

	return query
}
