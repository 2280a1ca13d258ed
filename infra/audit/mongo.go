package audit

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/giovaniif/instrument-closet/domain/reservation"
	"github.com/giovaniif/instrument-closet/protocols"
)

const collectionName = "reservation_events"

type inserter interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
}

// MongoAudit keeps an append-only trail of reservation events.
type MongoAudit struct {
	client     *mongo.Client
	collection inserter
}

func NewMongoAudit(ctx context.Context, uri, database string) (*MongoAudit, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoAudit{client: client, collection: client.Database(database).Collection(collectionName)}, nil
}

func (a *MongoAudit) Publish(ctx context.Context, event reservation.Event) error {
	_, err := a.collection.InsertOne(ctx, event)
	if mongo.IsDuplicateKeyError(err) {
		// the event id is the document id, so a retried publish is a no-op
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert audit event %s: %w", event.Id, err)
	}
	return nil
}

func (a *MongoAudit) Ping(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	return a.client.Ping(ctx, readpref.Primary())
}

func (a *MongoAudit) Close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	return a.client.Disconnect(ctx)
}

var _ protocols.EventPublisher = (*MongoAudit)(nil)
