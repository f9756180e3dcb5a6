// Package mongodb implements the repository ports on a MongoDB
// deployment with three collections: users (keyed by email), plants,
// and orders. Stock decrements and order status transitions are single
// conditional updates so concurrent writers serialize at the store.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/plantnet/backend/internal/platform/apperr"
)

const (
	usersCollection  = "users"
	plantsCollection = "plants"
	ordersCollection = "orders"
)

type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	plants *mongo.Collection
	orders *mongo.Collection
}

// Connect dials the deployment and verifies it with a ping. The caller
// owns the context deadline.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	db := client.Database(database)
	return &Store{
		client: client,
		users:  db.Collection(usersCollection),
		plants: db.Collection(plantsCollection),
		orders: db.Collection(ordersCollection),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// unavailable wraps a driver failure so transport maps it to 503
// instead of masking it as a domain error.
func unavailable(op string, err error) error {
	return apperr.Unavailable("mongodb: "+op, err)
}
