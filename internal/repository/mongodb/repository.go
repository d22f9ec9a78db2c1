package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
)

// ErrNotFound is returned when no business matches a lookup.
var ErrNotFound = errors.New("business not found")

// ErrDuplicate is returned when a business id is already registered.
var ErrDuplicate = errors.New("business already registered")

const businessesCollection = "businesses"

// Repository defines the storage operations for registered businesses.
type Repository interface {
	Insert(ctx context.Context, business models.Business) error
	FindByID(ctx context.Context, id string) (*models.Business, error)
	FindByBusinessID(ctx context.Context, businessID string) (*models.Business, error)
	FindByPhoneNumber(ctx context.Context, phoneNumber string) (*models.Business, error)
	List(ctx context.Context) ([]models.Business, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository and ensures lookup indexes exist.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: businessesCollection,
	}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "business_id", Value: 1}}},
		{Keys: bson.D{{Key: "phone_number", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create business indexes: %w", err)
	}
	return nil
}

// Insert stores a new business document.
func (r *MongoDBRepository) Insert(ctx context.Context, business models.Business) error {
	if _, err := r.collection().InsertOne(ctx, business); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicate, business.ID)
		}
		return fmt.Errorf("failed to insert business: %w", err)
	}
	return nil
}

// FindByID loads a business by its document id.
func (r *MongoDBRepository) FindByID(ctx context.Context, id string) (*models.Business, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByBusinessID loads the business owning a WhatsApp phone number id.
func (r *MongoDBRepository) FindByBusinessID(ctx context.Context, businessID string) (*models.Business, error) {
	return r.findOne(ctx, bson.M{"business_id": businessID})
}

// FindByPhoneNumber loads the business owning a WhatsApp sender number.
func (r *MongoDBRepository) FindByPhoneNumber(ctx context.Context, phoneNumber string) (*models.Business, error) {
	return r.findOne(ctx, bson.M{"phone_number": phoneNumber})
}

// List returns every registered business ordered by name.
func (r *MongoDBRepository) List(ctx context.Context) ([]models.Business, error) {
	cursor, err := r.collection().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}
	defer cursor.Close(ctx)

	var businesses []models.Business
	if err := cursor.All(ctx, &businesses); err != nil {
		return nil, fmt.Errorf("failed to decode businesses: %w", err)
	}
	return businesses, nil
}

func (r *MongoDBRepository) findOne(ctx context.Context, filter bson.M) (*models.Business, error) {
	var business models.Business
	err := r.collection().FindOne(ctx, filter).Decode(&business)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find business: %w", err)
	}
	return &business, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
