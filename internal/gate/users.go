package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const RoleAdmin = "admin"

// UserRepository is the slice of the user store the gate needs: role lookup
// for the admin check and the lastActive stamp that feeds the active-user
// count.
type UserRepository interface {
	// Role returns the user's role, or "" when the user is unknown.
	Role(ctx context.Context, email string) (string, error)
	TouchLastActive(ctx context.Context, email string, at time.Time) error
}

type mongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{
		collection: db.Collection("users"),
	}
}

func (m *mongoUserRepository) Role(ctx context.Context, email string) (string, error) {
	var doc struct {
		Role string `bson:"role"`
	}
	err := m.collection.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up user role: %w", err)
	}
	return doc.Role, nil
}

func (m *mongoUserRepository) TouchLastActive(ctx context.Context, email string, at time.Time) error {
	_, err := m.collection.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"lastActive": at}})
	if err != nil {
		return fmt.Errorf("failed to stamp lastActive: %w", err)
	}
	return nil
}
