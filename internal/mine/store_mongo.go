package mine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"minetrack/pkg/sentinel"
)

const collectionName = "mines"

// MongoStore persists mine records in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(collectionName)}
}

// mineDoc is the stored shape; the environmental snapshot is deliberately
// absent because it is a read-time annotation, never stored state.
type mineDoc struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Name        string        `bson:"name"`
	Type        Type          `bson:"type"`
	Coordinates Coordinates   `bson:"coordinates"`
	Description string        `bson:"description"`
	Verified    bool          `bson:"verified"`
	License     License       `bson:"license"`
	Version     int64         `bson:"version"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
}

func (d mineDoc) toMine() *Mine {
	return &Mine{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Type:        d.Type,
		Coordinates: d.Coordinates,
		Description: d.Description,
		Verified:    d.Verified,
		License:     d.License,
		Version:     d.Version,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *MongoStore) Insert(ctx context.Context, m *Mine) error {
	doc := mineDoc{
		Name:        m.Name,
		Type:        m.Type,
		Coordinates: m.Coordinates,
		Description: m.Description,
		Verified:    m.Verified,
		License:     m.License,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert mine: %w", err)
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return fmt.Errorf("insert mine: unexpected inserted id type %T", res.InsertedID)
	}
	m.ID = oid.Hex()
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*Mine, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, sentinel.ErrNotFound
	}

	var doc mineDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find mine by id: %w", err)
	}
	return doc.toMine(), nil
}

// buildQuery translates a Filter into a document-store query. The search
// string is untrusted and is escaped before it becomes a regex.
func buildQuery(f Filter) bson.M {
	q := bson.M{}
	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		q["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	if f.Type != nil {
		q["type"] = *f.Type
	}
	if f.License != nil {
		q["license"] = *f.License
	}
	if f.Verified != nil {
		q["verified"] = *f.Verified
	}
	return q
}

func (s *MongoStore) Find(ctx context.Context, f Filter) ([]*Mine, error) {
	cursor, err := s.coll.Find(ctx, buildQuery(f))
	if err != nil {
		return nil, fmt.Errorf("find mines: %w", err)
	}

	var docs []mineDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode mines: %w", err)
	}

	mines := make([]*Mine, 0, len(docs))
	for _, d := range docs {
		mines = append(mines, d.toMine())
	}
	return mines, nil
}

func (s *MongoStore) Update(ctx context.Context, id string, upd Update) (*Mine, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, sentinel.ErrNotFound
	}

	set := bson.M{"updatedAt": upd.UpdatedAt}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Type != nil {
		set["type"] = *upd.Type
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Verified != nil {
		set["verified"] = *upd.Verified
	}
	if upd.License != nil {
		set["license"] = *upd.License
	}

	var doc mineDoc
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "version": upd.ExpectedVersion},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the record is gone or the version moved under us.
		n, countErr := s.coll.CountDocuments(ctx, bson.M{"_id": oid})
		if countErr != nil {
			return nil, fmt.Errorf("update mine: %w", countErr)
		}
		if n == 0 {
			return nil, sentinel.ErrNotFound
		}
		return nil, sentinel.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update mine: %w", err)
	}
	return doc.toMine(), nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return sentinel.ErrNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete mine: %w", err)
	}
	if res.DeletedCount == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
