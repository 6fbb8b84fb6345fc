package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/kirana_cart/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cartsCollection = "carts"

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(cartsCollection),
	}
}

func (m *MongoRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

func (m *MongoRepository) Save(ctx context.Context, cart *domain.Cart) error {
	filter := bson.M{"user_id": cart.UserID}

	saved, err := m.upsert(ctx, filter, cart, true)
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	*cart = *saved
	return nil
}

func (m *MongoRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expected int64) error {
	// Documents written before versioning carry no version field; null
	// matches them as well as a fresh insert.
	filter := bson.M{"user_id": cart.UserID, "version": expected}
	if expected == 0 {
		filter["version"] = bson.M{"$in": bson.A{int64(0), nil}}
	}

	saved, err := m.upsert(ctx, filter, cart, expected == 0)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) || mongo.IsDuplicateKeyError(err) {
			return ErrVersionConflict
		}
		return fmt.Errorf("failed to save cart version %d: %w", expected, err)
	}

	*cart = *saved
	return nil
}

func (m *MongoRepository) upsert(ctx context.Context, filter bson.M, cart *domain.Cart, upsert bool) (*domain.Cart, error) {
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}

	update := bson.M{
		"$set": bson.M{
			"user_id":    cart.UserID,
			"items":      items,
			"updated_at": cart.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(upsert).
		SetReturnDocument(options.After)

	var saved domain.Cart
	if err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// CreateIndexes must run before SaveIfVersion is used: the unique user_id
// index is what turns a racing first insert into a version conflict.
func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
