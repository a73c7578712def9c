package inventory

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoLedger struct {
	collection *mongo.Collection
}

func NewMongoLedger(db *mongo.Database) Ledger {
	return &mongoLedger{
		collection: db.Collection("productCollection"),
	}
}

func productFilter(productID string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}
	return bson.M{"_id": oid}, nil
}

// DecrementStock is a single compare-and-decrement: the stock guard lives in
// the filter, so a concurrent decrement that would drive stock negative simply
// matches nothing.
func (l *mongoLedger) DecrementStock(ctx context.Context, productID string, quantity int64) (int64, error) {
	filter, err := productFilter(productID)
	if err != nil {
		return 0, err
	}
	filter["stock"] = bson.M{"$gte": quantity}

	update := bson.M{"$inc": bson.M{"stock": -quantity}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc struct {
		Stock int64 `bson:"stock"`
	}
	err = l.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.Stock, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("failed to decrement stock: %w", err)
	}

	// Guard failed or the product is gone; re-read to tell the two apart and
	// to fill in the available count for the caller.
	available, lookupErr := l.currentStock(ctx, productID)
	if lookupErr != nil {
		return 0, lookupErr
	}
	return 0, &OutOfStockError{ProductID: productID, Requested: quantity, Available: available}
}

func (l *mongoLedger) currentStock(ctx context.Context, productID string) (int64, error) {
	filter, err := productFilter(productID)
	if err != nil {
		return 0, err
	}

	var doc struct {
		Stock int64 `bson:"stock"`
	}
	err = l.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrProductNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}
	return doc.Stock, nil
}

func (l *mongoLedger) RestoreStock(ctx context.Context, productID string, quantity int64) error {
	filter, err := productFilter(productID)
	if err != nil {
		return err
	}

	result, err := l.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"stock": quantity}})
	if err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (l *mongoLedger) LowStock(ctx context.Context, threshold int64, limit int64) ([]StockLevel, error) {
	filter := bson.M{"stock": bson.M{"$lt": threshold}}
	opts := options.Find().
		SetSort(bson.D{{Key: "stock", Value: 1}}).
		SetLimit(limit).
		SetProjection(bson.M{"name": 1, "stock": 1})

	cursor, err := l.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}
	defer cursor.Close(ctx)

	var levels []StockLevel
	for cursor.Next(ctx) {
		var doc struct {
			ID    primitive.ObjectID `bson:"_id"`
			Name  string             `bson:"name"`
			Stock int64              `bson:"stock"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode low stock row: %w", err)
		}
		levels = append(levels, StockLevel{
			ProductID: doc.ID.Hex(),
			Name:      doc.Name,
			Stock:     doc.Stock,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("low stock cursor failed: %w", err)
	}
	return levels, nil
}
