package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/imonsheikh/women-three-piece-server/internal/cart/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) CartRepository {
	return &mongoRepository{
		collection: db.Collection("cartsCollection"),
	}
}

func (m *mongoRepository) AddLine(ctx context.Context, line domain.CartLine) (string, error) {
	filter := bson.M{"userEmail": line.UserEmail, "productId": line.ProductID}

	err := m.collection.FindOne(ctx, filter).Err()
	if err == nil {
		return "", ErrDuplicateItem
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("failed to check existing cart line: %w", err)
	}

	line.ID = ""
	result, err := m.collection.InsertOne(ctx, line)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost the race to a concurrent add of the same product.
			return "", ErrDuplicateItem
		}
		return "", fmt.Errorf("failed to insert cart line: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return oid.Hex(), nil
}

// AdjustQuantity uses a pipeline update so the guard, the increment and the
// line-total recompute are one round trip. Concurrent adjusts on the same
// line serialize inside MongoDB; neither lost updates nor quantity < 1 can
// slip through.
func (m *mongoRepository) AdjustQuantity(ctx context.Context, lineID string, delta int64) (*domain.CartLine, error) {
	oid, err := primitive.ObjectIDFromHex(lineID)
	if err != nil {
		return nil, ErrLineNotFound
	}

	filter := bson.M{"_id": oid}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": 1 - delta}
	}

	newQuantity := bson.M{"$add": bson.A{"$quantity", delta}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"quantity":   newQuantity,
			"totalPrice": bson.M{"$multiply": bson.A{"$productPrice", newQuantity}},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var line domain.CartLine
	err = m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&line)
	if err == nil {
		return &line, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to adjust quantity: %w", err)
	}

	// Nothing matched: either the line is gone or the guard refused the
	// decrease. A follow-up read classifies the failure; it is not part of
	// the mutation.
	lookupErr := m.collection.FindOne(ctx, bson.M{"_id": oid}).Err()
	if errors.Is(lookupErr, mongo.ErrNoDocuments) {
		return nil, ErrLineNotFound
	}
	if lookupErr != nil {
		return nil, fmt.Errorf("failed to look up cart line: %w", lookupErr)
	}
	return nil, ErrQuantityTooLow
}

func (m *mongoRepository) RemoveLine(ctx context.Context, lineID string) (*domain.CartLine, error) {
	oid, err := primitive.ObjectIDFromHex(lineID)
	if err != nil {
		return nil, nil
	}

	var line domain.CartLine
	err = m.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&line)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart line: %w", err)
	}
	return &line, nil
}

func (m *mongoRepository) ClearCart(ctx context.Context, userEmail string) (int64, error) {
	result, err := m.collection.DeleteMany(ctx, bson.M{"userEmail": userEmail})
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return result.DeletedCount, nil
}

func (m *mongoRepository) ListCart(ctx context.Context, userEmail string) ([]domain.CartLine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.M{"userEmail": userEmail}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	defer cursor.Close(ctx)

	var lines []domain.CartLine
	if err := cursor.All(ctx, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart lines: %w", err)
	}
	return lines, nil
}

// EnsureIndexes creates the unique (userEmail, productId) index that backs
// the duplicate-add check against concurrent inserts.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	repo := &mongoRepository{collection: db.Collection("cartsCollection")}
	return repo.createIndexes(ctx)
}

func (m *mongoRepository) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userEmail", Value: 1},
				{Key: "productId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}
	return nil
}
