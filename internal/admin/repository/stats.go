package repository

import (
	"context"
	"fmt"
	"time"

	"silvalley/pkg/config"
	"silvalley/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollectionName    = "Users"
	spacesCollectionName   = "Spaces"
	bookingsCollectionName = "Bookings"
)

// StatsRepository reads aggregate figures across the Users, Spaces and
// Bookings collections. It never writes.
type StatsRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountUsersSince(ctx context.Context, since time.Time) (int64, error)
	CountSpaces(ctx context.Context) (int64, error)
	CountActiveSpaces(ctx context.Context) (int64, error)
	CountBookings(ctx context.Context) (int64, error)
	CountBookingsByStatus(ctx context.Context, status string) (int64, error)
	Revenue(ctx context.Context, from, to time.Time) (float64, error)
	BookingTrends(ctx context.Context, since time.Time) ([]model.TrendPoint, error)
	BookingsByStatus(ctx context.Context) ([]model.StatusCount, error)
	PopularSpaces(ctx context.Context, limit int) ([]model.SpaceRank, error)
	RecentBookings(ctx context.Context, limit int) ([]*model.Booking, error)
}

type mongoStatsRepository struct {
	cfg      *config.Config
	db       *mongo.Database
	users    *mongo.Collection
	spaces   *mongo.Collection
	bookings *mongo.Collection
}

func NewMongoStatsRepository(cfg *config.Config) StatsRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStatsRepository{
		cfg:      cfg,
		db:       db,
		users:    db.Collection(usersCollectionName),
		spaces:   db.Collection(spacesCollectionName),
		bookings: db.Collection(bookingsCollectionName),
	}
}

func (r *mongoStatsRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.cfg.ReadTimeout)
}

func (r *mongoStatsRepository) CountUsers(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err := r.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *mongoStatsRepository) CountUsersSince(ctx context.Context, since time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err := r.users.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since}})
	if err != nil {
		return 0, fmt.Errorf("failed to count new users: %w", err)
	}
	return count, nil
}

func (r *mongoStatsRepository) CountSpaces(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err := r.spaces.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count spaces: %w", err)
	}
	return count, nil
}

func (r *mongoStatsRepository) CountActiveSpaces(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err := r.spaces.CountDocuments(ctx, bson.M{"available_desks": bson.M{"$gt": 0}})
	if err != nil {
		return 0, fmt.Errorf("failed to count active spaces: %w", err)
	}
	return count, nil
}

func (r *mongoStatsRepository) CountBookings(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err := r.bookings.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoStatsRepository) CountBookingsByStatus(ctx context.Context, status string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err := r.bookings.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s bookings: %w", status, err)
	}
	return count, nil
}

// Revenue sums total_price over [from, to). Cancelled bookings never count
// towards revenue because their seats went back to the ledger.
func (r *mongoStatsRepository) Revenue(ctx context.Context, from, to time.Time) (float64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := []bson.M{
		{"$match": bson.M{
			"status":     bson.M{"$ne": model.StatusCancelled},
			"created_at": bson.M{"$gte": from, "$lt": to},
		}},
		{"$group": bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$total_price"},
		}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode revenue: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func (r *mongoStatsRepository) BookingTrends(ctx context.Context, since time.Time) ([]model.TrendPoint, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := []bson.M{
		{"$match": bson.M{"created_at": bson.M{"$gte": since}}},
		{"$group": bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$created_at",
			}},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking trends: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Date  string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode booking trends: %w", err)
	}

	trends := make([]model.TrendPoint, 0, len(rows))
	for _, row := range rows {
		trends = append(trends, model.TrendPoint{Date: row.Date, Count: row.Count})
	}
	return trends, nil
}

func (r *mongoStatsRepository) BookingsByStatus(ctx context.Context) ([]model.StatusCount, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings by status: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode bookings by status: %w", err)
	}

	counts := make([]model.StatusCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, model.StatusCount{Status: row.Status, Count: row.Count})
	}
	return counts, nil
}

// PopularSpaces ranks by booking count descending; ties break by space id
// ascending so repeated dashboard loads return a stable order.
func (r *mongoStatsRepository) PopularSpaces(ctx context.Context, limit int) ([]model.SpaceRank, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":        "$space_id",
			"space_name": bson.M{"$first": "$space_name"},
			"bookings":   bson.M{"$sum": 1},
		}},
		{"$sort": bson.D{{Key: "bookings", Value: -1}, {Key: "_id", Value: 1}}},
		{"$limit": limit},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate popular spaces: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		SpaceID   string `bson:"_id"`
		SpaceName string `bson:"space_name"`
		Bookings  int    `bson:"bookings"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode popular spaces: %w", err)
	}

	ranks := make([]model.SpaceRank, 0, len(rows))
	for _, row := range rows {
		ranks = append(ranks, model.SpaceRank{
			SpaceID:   row.SpaceID,
			SpaceName: row.SpaceName,
			Bookings:  row.Bookings,
		})
	}
	return ranks, nil
}

func (r *mongoStatsRepository) RecentBookings(ctx context.Context, limit int) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.bookings.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode recent bookings: %w", err)
	}
	return bookings, nil
}
