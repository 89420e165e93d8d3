package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collection = "documents"

type snapshot struct {
	Id        string    `bson:"_id"`
	Text      string    `bson:"text"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type Mongo struct {
	client *mongo.Client
	docs   *mongo.Collection
}

func NewMongo(ctx context.Context, uri, db string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "mongo ping")
	}

	return &Mongo{
		client: client,
		docs:   client.Database(db).Collection(collection),
	}, nil
}

func (m *Mongo) Load(ctx context.Context, docId string) (string, bool, error) {
	var s snapshot
	err := m.docs.FindOne(ctx, bson.D{{Key: "_id", Value: docId}}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return "", false, nil
	} else if err != nil {
		return "", false, errors.Wrapf(err, "load %s", docId)
	}
	return s.Text, true, nil
}

func (m *Mongo) Save(ctx context.Context, docId, text string) error {
	filter := bson.D{{Key: "_id", Value: docId}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "text", Value: text},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	opts := options.Update().SetUpsert(true)

	if _, err := m.docs.UpdateOne(ctx, filter, update, opts); err != nil {
		return errors.Wrapf(err, "save %s", docId)
	}
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
