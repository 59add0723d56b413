package historyRepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"oseplatform/database"
	"oseplatform/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type mongoHistoryRepo struct {
	coll *mongo.Collection
}

// NewMongoHistoryRepo returns a HistoryRepository over the series_notifications collection.
func NewMongoHistoryRepo(db *mongo.Database) HistoryRepository {
	repo := &mongoHistoryRepo{coll: db.Collection("series_notifications")}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("failed to create history indexes", zap.Error(err))
	}
	return repo
}

func (r *mongoHistoryRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "serials.imei", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new history item and returns its ID.
func (r *mongoHistoryRepo) Create(ctx context.Context, item models.NotificationHistoryItem) (string, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Date.IsZero() {
		item.Date = time.Now().UTC()
	}

	if _, err := r.coll.InsertOne(ctx, item); err != nil {
		return "", fmt.Errorf("failed to insert history item: %w", err)
	}
	return item.ID, nil
}

// GetByID returns a history item by its ID.
func (r *mongoHistoryRepo) GetByID(ctx context.Context, id string) (*models.NotificationHistoryItem, error) {
	var item models.NotificationHistoryItem
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history item %s: %w", id, err)
	}
	return &item, nil
}

// List returns one page of items, newest first, and the total matching count.
func (r *mongoHistoryRepo) List(ctx context.Context, filter models.HistoryFilter, page, limit int) ([]models.NotificationHistoryItem, int64, error) {
	query := buildFilter(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count history: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query history: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.NotificationHistoryItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("failed to decode history: %w", err)
	}
	return items, total, nil
}

// buildFilter turns the independent substring filters into case-insensitive regex matches.
func buildFilter(f models.HistoryFilter) bson.M {
	query := bson.M{}
	add := func(field, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		query[field] = primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
	}
	add("email_to", f.Email)
	add("customer_name", f.Customer)
	add("location", f.Location)
	return query
}
