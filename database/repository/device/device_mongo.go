package deviceRepo

import (
	"context"
	"fmt"
	"time"

	"oseplatform/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoDeviceRepo implements DeviceRepository using MongoDB.
type MongoDeviceRepo struct {
	coll *mongo.Collection
}

var lookupFields = map[string]bool{
	FieldIMEI:       true,
	FieldICCID:      true,
	FieldPackageNo:  true,
	FieldCajaMaster: true,
	FieldPalletID:   true,
	FieldLocation:   true,
}

// NewMongoDeviceRepo creates a DeviceRepository over the devices collection.
func NewMongoDeviceRepo(db *mongo.Database) DeviceRepository {
	repo := &MongoDeviceRepo{coll: db.Collection("devices")}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("failed to create device indexes", zap.Error(err))
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoDeviceRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "device_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: FieldIMEI, Value: 1}}},
		{Keys: bson.D{{Key: FieldICCID, Value: 1}}},
		{Keys: bson.D{{Key: FieldPackageNo, Value: 1}}},
		{Keys: bson.D{{Key: FieldCajaMaster, Value: 1}}},
		{Keys: bson.D{{Key: FieldPalletID, Value: 1}}},
		{Keys: bson.D{{Key: FieldLocation, Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// FindByIdentifiers runs one $or query over the three identifier fields.
func (r *MongoDeviceRepo) FindByIdentifiers(ctx context.Context, imeis, iccids, packages []string) ([]models.Device, error) {
	var or bson.A
	if len(imeis) > 0 {
		or = append(or, bson.M{FieldIMEI: bson.M{"$in": imeis}})
	}
	if len(iccids) > 0 {
		or = append(or, bson.M{FieldICCID: bson.M{"$in": iccids}})
	}
	if len(packages) > 0 {
		or = append(or, bson.M{FieldPackageNo: bson.M{"$in": packages}})
	}
	if len(or) == 0 {
		return []models.Device{}, nil
	}

	ctx, cancel := newContext(ctx, 15*time.Second)
	defer cancel()

	return r.find(ctx, bson.M{"$or": or}, options.Find())
}

// FindByField returns devices matching one lookup field exactly.
func (r *MongoDeviceRepo) FindByField(ctx context.Context, field, value string) ([]models.Device, error) {
	if !lookupFields[field] {
		return nil, fmt.Errorf("unsupported lookup field %q", field)
	}

	ctx, cancel := newContext(ctx, 15*time.Second)
	defer cancel()

	opts := options.Find().
		SetLimit(MaxExpansion + 1).
		SetSort(bson.D{{Key: FieldCajaMaster, Value: 1}, {Key: FieldIMEI, Value: 1}})
	return r.find(ctx, bson.M{field: value}, opts)
}

func (r *MongoDeviceRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Device, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer cursor.Close(ctx)

	devices := []models.Device{}
	if err := cursor.All(ctx, &devices); err != nil {
		return nil, fmt.Errorf("failed to decode devices: %w", err)
	}
	return devices, nil
}

// MarkNotified stamps devices with the notification that covered them.
func (r *MongoDeviceRepo) MarkNotified(ctx context.Context, deviceIDs []string, notificationID string, at time.Time) (int64, error) {
	if len(deviceIDs) == 0 {
		return 0, nil
	}

	ctx, cancel := newContext(ctx, 15*time.Second)
	defer cancel()

	filter := bson.M{"device_id": bson.M{"$in": deviceIDs}}
	update := bson.M{"$set": bson.M{
		"notified_at":     at,
		"notification_id": notificationID,
		"updated_at":      at,
	}}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark devices notified: %w", err)
	}
	return res.ModifiedCount, nil
}
