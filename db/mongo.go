package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"negosim/models"
)

const scenarioCollection = "scenarios"

// MongoStore keeps scenario presets in MongoDB.
type MongoStore struct {
	client   *mongo.Client
	database *mongo.Database
}

var _ ScenarioStore = (*MongoStore)(nil)

// InitMongo connects to MongoDB, verifies the connection with a ping, and
// returns a store bound to the given database.
func InitMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	store := &MongoStore{client: client, database: client.Database(database)}
	store.ensureIndexes()

	log.Info().Str("database", database).Msg("connected to MongoDB")
	return store, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) collection() *mongo.Collection {
	return s.database.Collection(scenarioCollection)
}

func (s *MongoStore) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to create scenario indexes")
	}
}

func (s *MongoStore) List(ctx context.Context) ([]models.Scenario, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer cursor.Close(ctx)

	var scenarios []models.Scenario
	if err := cursor.All(ctx, &scenarios); err != nil {
		return nil, fmt.Errorf("decode scenarios: %w", err)
	}
	return scenarios, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*models.Scenario, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var scn models.Scenario
	err = s.collection().FindOne(ctx, bson.M{"_id": objID}).Decode(&scn)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get scenario: %w", err)
	}
	return &scn, nil
}

func (s *MongoStore) Create(ctx context.Context, scn *models.Scenario) (string, error) {
	now := time.Now()
	scn.CreatedAt = now
	scn.UpdatedAt = now
	if scn.ID.IsZero() {
		scn.ID = primitive.NewObjectID()
	}

	if _, err := s.collection().InsertOne(ctx, scn); err != nil {
		return "", fmt.Errorf("insert scenario: %w", err)
	}
	return scn.ID.Hex(), nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.collection().DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
