package activity

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "activity_logs"

// MongoStore persists activity entries in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(collectionName)}
}

type entryDoc struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	EntryID    string        `bson:"entryId"`
	AdminID    string        `bson:"adminId"`
	AdminName  string        `bson:"adminName"`
	Action     Action        `bson:"action"`
	TargetType string        `bson:"targetType"`
	TargetID   string        `bson:"targetId"`
	Details    string        `bson:"details,omitempty"`
	Timestamp  time.Time     `bson:"timestamp"`
}

func (s *MongoStore) Append(ctx context.Context, e Entry) error {
	doc := entryDoc{
		EntryID:    e.ID,
		AdminID:    e.AdminID,
		AdminName:  e.AdminName,
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Details:    e.Details,
		Timestamp:  e.Timestamp,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("append activity entry: %w", err)
	}
	return nil
}

func (s *MongoStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list activity entries: %w", err)
	}

	var docs []entryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activity entries: %w", err)
	}

	entries := make([]Entry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, Entry{
			ID:         d.EntryID,
			AdminID:    d.AdminID,
			AdminName:  d.AdminName,
			Action:     d.Action,
			TargetType: d.TargetType,
			TargetID:   d.TargetID,
			Details:    d.Details,
			Timestamp:  d.Timestamp,
		})
	}
	return entries, nil
}
