package audit

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/giovaniif/instrument-closet/domain/reservation"
)

type inserterMock struct {
	documents []any
	err       error
}

func (i *inserterMock) InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	i.documents = append(i.documents, document)
	if i.err != nil {
		return nil, i.err
	}
	return &mongo.InsertOneResult{InsertedID: "e-1"}, nil
}

func TestMongoAudit_Publish(t *testing.T) {
	collection := &inserterMock{}
	audit := &MongoAudit{collection: collection}
	event := reservation.Event{Id: "e-1", Type: reservation.EventDeleted, Reservation: reservation.Reservation{Id: 3}}

	if err := audit.Publish(context.Background(), event); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(collection.documents) != 1 {
		t.Fatalf("expected 1 document, got %d", len(collection.documents))
	}
	stored, ok := collection.documents[0].(reservation.Event)
	if !ok || stored.Id != "e-1" {
		t.Fatalf("expected event e-1 to be stored, got %+v", collection.documents[0])
	}
}

func TestMongoAudit_DuplicateIsIgnored(t *testing.T) {
	collection := &inserterMock{err: mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}}
	audit := &MongoAudit{collection: collection}

	if err := audit.Publish(context.Background(), reservation.Event{Id: "e-1"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestMongoAudit_InsertError(t *testing.T) {
	collection := &inserterMock{err: errors.New("timeout")}
	audit := &MongoAudit{collection: collection}

	err := audit.Publish(context.Background(), reservation.Event{Id: "e-1"})
	if !errors.Is(err, collection.err) {
		t.Fatalf("expected wrapped timeout, got %v", err)
	}
}

func TestMongoAudit_NoClient(t *testing.T) {
	audit := &MongoAudit{collection: &inserterMock{}}
	if err := audit.Ping(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := audit.Close(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
