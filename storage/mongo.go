package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jerryola1/evergreen/domain"
)

// MongoStore keeps leads in a hosted MongoDB collection, one document per
// business keyed by the unique name.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoStore connects to the given MongoDB deployment and pings it before
// returning, so a bad address fails fast instead of on first use.
func NewMongoStore(ctx context.Context, uri, db, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, &domain.ConnectivityError{Op: "ping mongodb", Err: err}
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(db).Collection(collection),
		now:        time.Now,
	}, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type businessDocument struct {
	Name          string   `bson:"name"`
	Priority      string   `bson:"priority,omitempty"`
	LeadType      string   `bson:"leadType,omitempty"`
	Borough       string   `bson:"borough,omitempty"`
	Postcode      string   `bson:"postcode,omitempty"`
	Address       string   `bson:"address,omitempty"`
	Phone         string   `bson:"phone,omitempty"`
	Website       string   `bson:"website,omitempty"`
	CuisineType   string   `bson:"cuisineType,omitempty"`
	Category      string   `bson:"category,omitempty"`
	Latitude      *float64 `bson:"latitude,omitempty"`
	Longitude     *float64 `bson:"longitude,omitempty"`
	Source        string   `bson:"source,omitempty"`
	Contacted     bool     `bson:"contacted"`
	ContactedDate string   `bson:"contactedDate,omitempty"`
	ContactNotes  string   `bson:"contactNotes,omitempty"`
}

func (d businessDocument) toBusiness() domain.Business {
	return domain.Business{
		Name:          d.Name,
		Priority:      d.Priority,
		LeadType:      d.LeadType,
		Borough:       d.Borough,
		Postcode:      d.Postcode,
		Address:       d.Address,
		Phone:         d.Phone,
		Website:       d.Website,
		CuisineType:   d.CuisineType,
		Category:      d.Category,
		Latitude:      d.Latitude,
		Longitude:     d.Longitude,
		Source:        d.Source,
		Contacted:     d.Contacted,
		ContactedDate: d.ContactedDate,
		ContactNotes:  d.ContactNotes,
	}
}

func documentFor(b domain.Business) businessDocument {
	return businessDocument{
		Name:          b.Name,
		Priority:      b.Priority,
		LeadType:      b.LeadType,
		Borough:       b.Borough,
		Postcode:      b.Postcode,
		Address:       b.Address,
		Phone:         b.Phone,
		Website:       b.Website,
		CuisineType:   b.CuisineType,
		Category:      b.Category,
		Latitude:      b.Latitude,
		Longitude:     b.Longitude,
		Source:        b.Source,
		Contacted:     b.Contacted,
		ContactedDate: b.ContactedDate,
		ContactNotes:  b.ContactNotes,
	}
}

// FetchBusinesses retrieves every lead, sorted by name ascending.
func (s *MongoStore) FetchBusinesses(ctx context.Context) ([]domain.Business, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, &domain.ConnectivityError{Op: "fetch businesses", Err: err}
	}
	defer cursor.Close(ctx)

	businesses := []domain.Business{}
	for cursor.Next(ctx) {
		var doc businessDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode business document: %w", err)
		}
		businesses = append(businesses, doc.toBusiness())
	}
	if err := cursor.Err(); err != nil {
		return nil, &domain.ConnectivityError{Op: "fetch businesses", Err: err}
	}
	sort.Slice(businesses, func(i, j int) bool { return businesses[i].Name < businesses[j].Name })
	return businesses, nil
}

// UpdateContact sets the contact fields of the named lead.
func (s *MongoStore) UpdateContact(ctx context.Context, name string, upd domain.ContactUpdate) error {
	date := ""
	if upd.Contacted {
		date = s.now().Format("2006-01-02")
	}
	update := bson.M{"$set": bson.M{
		"contacted":     upd.Contacted,
		"contactedDate": date,
		"contactNotes":  upd.Notes,
	}}
	res, err := s.collection.UpdateOne(ctx, bson.M{"name": name}, update)
	if err != nil {
		return &domain.ConnectivityError{Op: "update contact", Err: err}
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the unique name index backing lookups and the sorted
// scan. Safe to call repeatedly.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create name index: %w", err)
	}
	return nil
}

// Seed upserts the given leads, used by provisioning.
func (s *MongoStore) Seed(ctx context.Context, businesses []domain.Business) error {
	for _, b := range businesses {
		_, err := s.collection.ReplaceOne(ctx, bson.M{"name": b.Name}, documentFor(b), options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("seed %q: %w", b.Name, err)
		}
	}
	return nil
}
