package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/imonsheikh/women-three-piece-server/internal/order/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	orders   *mongo.Collection
	products *mongo.Collection
	users    *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		orders:   db.Collection("ordersCollection"),
		products: db.Collection("productCollection"),
		users:    db.Collection("users"),
	}
}

func (m *mongoRepository) RevenueSince(ctx context.Context, since time.Time) (float64, error) {
	match := bson.M{}
	if !since.IsZero() {
		match["placedAt"] = bson.M{"$gte": since}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$total"},
		}}},
	}

	cursor, err := m.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode revenue: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Revenue, nil
}

func (m *mongoRepository) SalesTrend(ctx context.Context, since time.Time) ([]TrendPoint, error) {
	cursor, err := m.orders.Aggregate(ctx, salesTrendPipeline(since))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales trend: %w", err)
	}
	defer cursor.Close(ctx)

	var points []TrendPoint
	if err := cursor.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("failed to decode sales trend: %w", err)
	}
	return points, nil
}

// salesTrendPipeline buckets orders into days in the zone of since, so the
// trend agrees with the revenue summary about which day an evening order
// lands on.
func salesTrendPipeline(since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"placedAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format":   "%Y-%m-%d",
				"date":     "$placedAt",
				"timezone": since.Format("-07:00"),
			}},
			"revenue":    bson.M{"$sum": "$total"},
			"orderCount": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func (m *mongoRepository) TopProducts(ctx context.Context, limit int64) ([]ProductSales, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$items.productId",
			"productName": bson.M{"$last": "$items.productName"},
			"unitsSold":   bson.M{"$sum": "$items.quantity"},
		}}},
		// productId ascending as the tie-break keeps the ranking stable.
		{{Key: "$sort", Value: bson.D{
			{Key: "unitsSold", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := m.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top products: %w", err)
	}
	defer cursor.Close(ctx)

	var sales []ProductSales
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, fmt.Errorf("failed to decode top products: %w", err)
	}
	return sales, nil
}

func (m *mongoRepository) RecentOrders(ctx context.Context, limit int64) ([]domain.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "placedAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := m.orders.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode recent orders: %w", err)
	}
	return orders, nil
}

func (m *mongoRepository) ActiveUserCount(ctx context.Context, since time.Time) (int64, error) {
	count, err := m.users.CountDocuments(ctx, bson.M{"lastActive": bson.M{"$gte": since}})
	if err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return count, nil
}

func (m *mongoRepository) Counts(ctx context.Context) (Counts, error) {
	users, err := m.users.EstimatedDocumentCount(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count users: %w", err)
	}
	products, err := m.products.EstimatedDocumentCount(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count products: %w", err)
	}
	orders, err := m.orders.EstimatedDocumentCount(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count orders: %w", err)
	}
	return Counts{Users: users, Products: products, Orders: orders}, nil
}
