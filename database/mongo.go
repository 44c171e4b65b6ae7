package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-restaurant-printing/models"
)

const (
	ordersCollection     = "ordenes_restaurante"
	orderItemsCollection = "orden_items"
	menuItemsCollection  = "menu_items"
	tablesCollection     = "mesas"
)

// DBinstance connects to MongoDB and verifies the connection.
func DBinstance(ctx context.Context, url string) (*mongo.Client, error) {
	if url == "" {
		return nil, errors.New("MONGODB_URL is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

func OpenCollection(client *mongo.Client, database, collectionName string) *mongo.Collection {
	return client.Database(database).Collection(collectionName)
}

type MongoOrderSource struct {
	client     *mongo.Client
	orders     *mongo.Collection
	orderItems *mongo.Collection
}

func NewMongoOrderSource(client *mongo.Client, database string) *MongoOrderSource {
	return &MongoOrderSource{
		client:     client,
		orders:     OpenCollection(client, database, ordersCollection),
		orderItems: OpenCollection(client, database, orderItemsCollection),
	}
}

func (s *MongoOrderSource) FindOrder(ctx context.Context, orderID string) (models.Order, []models.OrderItem, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, nil, err
	}
	items, err := s.findItems(ctx, orderID)
	if err != nil {
		return models.Order{}, nil, err
	}
	return order, items, nil
}

func (s *MongoOrderSource) findOrder(ctx context.Context, orderID string) (models.Order, error) {
	match := bson.D{{Key: "$match", Value: bson.D{{Key: "id", Value: orderID}}}}
	lookupTable := bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: tablesCollection},
		{Key: "localField", Value: "mesa_id"},
		{Key: "foreignField", Value: "id"},
		{Key: "as", Value: "mesas"},
	}}}
	unwindTable := bson.D{{Key: "$unwind", Value: bson.D{
		{Key: "path", Value: "$mesas"},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	}}}
	limit := bson.D{{Key: "$limit", Value: 1}}

	cursor, err := s.orders.Aggregate(ctx, mongo.Pipeline{match, lookupTable, unwindTable, limit})
	if err != nil {
		return models.Order{}, fmt.Errorf("aggregate order %s: %w", orderID, err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return models.Order{}, fmt.Errorf("decode order %s: %w", orderID, err)
	}
	if len(orders) == 0 {
		return models.Order{}, ErrOrderNotFound
	}
	return orders[0], nil
}

func (s *MongoOrderSource) findItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	match := bson.D{{Key: "$match", Value: bson.D{{Key: "orden_id", Value: orderID}}}}
	sort := bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}}}}
	lookupMenuItem := bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: menuItemsCollection},
		{Key: "localField", Value: "menu_item_id"},
		{Key: "foreignField", Value: "id"},
		{Key: "as", Value: "menu_item"},
	}}}
	unwindMenuItem := bson.D{{Key: "$unwind", Value: bson.D{
		{Key: "path", Value: "$menu_item"},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	}}}

	cursor, err := s.orderItems.Aggregate(ctx, mongo.Pipeline{match, sort, lookupMenuItem, unwindMenuItem})
	if err != nil {
		return nil, fmt.Errorf("aggregate items of %s: %w", orderID, err)
	}
	defer cursor.Close(ctx)

	items := []models.OrderItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode items of %s: %w", orderID, err)
	}
	return items, nil
}

func (s *MongoOrderSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
