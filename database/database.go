package database

import (
	"context"
	"errors"
	"fmt"

	"go-restaurant-printing/config"
	"go-restaurant-printing/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderSource loads an order together with its items, joined with their
// menu item, in the order they were added.
type OrderSource interface {
	FindOrder(ctx context.Context, orderID string) (models.Order, []models.OrderItem, error)
	Close(ctx context.Context) error
}

// NewOrderSource connects to the store selected by ORDER_STORE.
func NewOrderSource(ctx context.Context, cfg config.Store) (OrderSource, error) {
	switch cfg.Driver {
	case "mongo":
		client, err := DBinstance(ctx, cfg.MongoURL)
		if err != nil {
			return nil, err
		}
		return NewMongoOrderSource(client, cfg.MongoDatabase), nil
	case "postgres":
		source, err := ConnectPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		return source, nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrInvalidStore, cfg.Driver)
}
