package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cloudwatchw/backend/internal/user"
	"github.com/cloudwatchw/backend/internal/weather"
)

// MongoStore backs the weather record store, the user repository and the
// report store with one MongoDB database: an append-only `weather`
// collection, a `users` collection with embedded location arrays, and a
// `reports` collection.
type MongoStore struct {
	client  *mongo.Client
	weather *mongo.Collection
	users   *mongo.Collection
	reports *mongo.Collection
}

// NewMongoStore connects to MongoDB and pings it before returning.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(database)
	return &MongoStore{
		client:  client,
		weather: db.Collection("weather"),
		users:   db.Collection("users"),
		reports: db.Collection("reports"),
	}, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Insert appends a new weather record.
func (s *MongoStore) Insert(ctx context.Context, rec weather.Record) error {
	if _, err := s.weather.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert weather record: %w", err)
	}
	return nil
}

// FindLatestNear runs a coordinate range query and returns the newest record
// by observation time, or weather.ErrNotFound.
func (s *MongoStore) FindLatestNear(ctx context.Context, coords weather.Coordinates, tolerance float64) (*weather.Record, error) {
	filter := bson.M{
		"latitude":  bson.M{"$gte": coords.Latitude - tolerance, "$lte": coords.Latitude + tolerance},
		"longitude": bson.M{"$gte": coords.Longitude - tolerance, "$lte": coords.Longitude + tolerance},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "observed_at", Value: -1}})

	var rec weather.Record
	err := s.weather.FindOne(ctx, filter, opts).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, weather.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find weather record: %w", err)
	}
	return &rec, nil
}

// PurgeAll deletes every weather record.
func (s *MongoStore) PurgeAll(ctx context.Context) (int64, error) {
	res, err := s.weather.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("purge weather records: %w", err)
	}
	return res.DeletedCount, nil
}

// Create inserts a new user document.
func (s *MongoStore) Create(ctx context.Context, u user.User) error {
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByEmail resolves a user document by email.
func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// All returns every user document.
func (s *MongoStore) All(ctx context.Context) ([]user.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []user.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// AppendLocation pushes a location onto the user's embedded list. The push
// is atomic at the document level.
func (s *MongoStore) AppendLocation(ctx context.Context, email string, loc user.Location) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$push": bson.M{"locations": loc}},
	)
	if err != nil {
		return fmt.Errorf("append location: %w", err)
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

// RemoveLocation pulls a location by id from the user's embedded list.
// Returns user.ErrLocationNotFound when nothing was removed.
func (s *MongoStore) RemoveLocation(ctx context.Context, email, locationID string) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$pull": bson.M{"locations": bson.M{"id": locationID}}},
	)
	if err != nil {
		return fmt.Errorf("remove location: %w", err)
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	if res.ModifiedCount == 0 {
		return user.ErrLocationNotFound
	}
	return nil
}

// SaveReport stores a free-form report document. The generated id and
// timestamp live alongside the submitted fields.
func (s *MongoStore) SaveReport(ctx context.Context, r user.Report) error {
	doc := bson.M{
		"id":        r.ID,
		"timestamp": r.SubmittedAt,
	}
	for k, v := range r.Fields {
		if k == "id" || k == "timestamp" {
			continue
		}
		doc[k] = v
	}
	if _, err := s.reports.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}
