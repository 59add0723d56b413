package operatorRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"oseplatform/database"
	"oseplatform/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// OperatorRepository manages back-office operators.
type OperatorRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Operator, error)
	Create(ctx context.Context, op *models.Operator) error
}

type mongoOperatorRepo struct {
	coll *mongo.Collection
}

// NewMongoOperatorRepo returns an OperatorRepository over the operators collection.
func NewMongoOperatorRepo(db *mongo.Database) OperatorRepository {
	repo := &mongoOperatorRepo{coll: db.Collection("operators")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		zap.L().Warn("failed to create operator indexes", zap.Error(err))
	}
	return repo
}

// GetByEmail returns the operator with the given email, or database.ErrNotFound.
func (r *mongoOperatorRepo) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	var op models.Operator
	err := r.coll.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&op)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch operator %s: %w", email, err)
	}
	return &op, nil
}

// Create inserts a new operator.
func (r *mongoOperatorRepo) Create(ctx context.Context, op *models.Operator) error {
	op.Email = strings.ToLower(op.Email)
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, op); err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}
	return nil
}
