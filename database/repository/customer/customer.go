package customerRepo

import (
	"context"
	"fmt"

	"oseplatform/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CustomerRepository lists the customers a batch can be addressed to.
type CustomerRepository interface {
	List(ctx context.Context) ([]models.Customer, error)
}

type mongoCustomerRepo struct {
	coll *mongo.Collection
}

// NewMongoCustomerRepo returns a CustomerRepository over the customers collection.
func NewMongoCustomerRepo(db *mongo.Database) CustomerRepository {
	return &mongoCustomerRepo{coll: db.Collection("customers")}
}

// List returns every customer sorted by name.
func (r *mongoCustomerRepo) List(ctx context.Context) ([]models.Customer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve customers: %w", err)
	}
	defer cursor.Close(ctx)

	customers := []models.Customer{}
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, fmt.Errorf("failed to decode customers: %w", err)
	}
	return customers, nil
}
