package database

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"go-restaurant-printing/config"
	"go-restaurant-printing/models"
)

func TestNewOrderSourceRejectsUnknownDriver(t *testing.T) {
	_, err := NewOrderSource(context.Background(), config.Store{Driver: "sqlite"})
	assert.ErrorIs(t, err, config.ErrInvalidStore)
}

func TestNewOrderSourceRequiresURL(t *testing.T) {
	for _, driver := range []string{"mongo", "postgres"} {
		_, err := NewOrderSource(context.Background(), config.Store{Driver: driver})
		assert.Error(t, err, driver)
	}
}

// TestMongoOrderSource runs against a live server when MONGODB_TEST_URL is set.
func TestMongoOrderSource(t *testing.T) {
	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL not set")
	}
	ctx := context.Background()
	client, err := DBinstance(ctx, url)
	require.NoError(t, err)

	db := "printing_test_" + time.Now().Format("150405")
	defer func() {
		_ = client.Database(db).Drop(ctx)
		_ = client.Disconnect(ctx)
	}()

	created := time.Date(2026, 10, 17, 13, 5, 0, 0, time.UTC)
	_, err = OpenCollection(client, db, tablesCollection).InsertOne(ctx, bson.M{"id": "t-4", "numero": 4})
	require.NoError(t, err)
	_, err = OpenCollection(client, db, ordersCollection).InsertOne(ctx, bson.M{
		"id": "o-1", "numero_orden": "ORD-1", "mesa_id": "t-4", "estado": "preparing", "total": 2380.0, "created_at": created,
	})
	require.NoError(t, err)
	_, err = OpenCollection(client, db, menuItemsCollection).InsertOne(ctx, bson.M{"id": int64(7), "name": "Shawarma", "category_id": int64(2)})
	require.NoError(t, err)
	_, err = OpenCollection(client, db, orderItemsCollection).InsertMany(ctx, []any{
		bson.M{"id": "i-2", "orden_id": "o-1", "menu_item_id": int64(99), "cantidad": 1, "precio_unitario": 500.0, "subtotal": 500.0, "created_at": created.Add(time.Minute)},
		bson.M{"id": "i-1", "orden_id": "o-1", "menu_item_id": int64(7), "cantidad": 2, "precio_unitario": 940.0, "subtotal": 1880.0, "created_at": created},
	})
	require.NoError(t, err)

	source := NewMongoOrderSource(client, db)
	order, items, err := source.FindOrder(ctx, "o-1")
	require.NoError(t, err)

	assert.Equal(t, "ORD-1", order.OrderNumber)
	assert.Equal(t, models.StatusPreparing, order.Status)
	n, ok := order.TableNumber()
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	require.Len(t, items, 2)
	assert.Equal(t, "Shawarma", items[0].Name())
	assert.Equal(t, int64(2), *items[0].MenuItem.CategoryID)
	assert.Equal(t, "Item", items[1].Name())

	_, _, err = source.FindOrder(ctx, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// TestPostgresOrderSource runs against a live server when DATABASE_TEST_URL is set.
func TestPostgresOrderSource(t *testing.T) {
	dsn := os.Getenv("DATABASE_TEST_URL")
	if dsn == "" {
		t.Skip("DATABASE_TEST_URL not set")
	}
	// temp tables live on one connection
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	ctx := context.Background()
	source, err := ConnectPostgres(ctx, dsn+sep+"pool_max_conns=1")
	require.NoError(t, err)
	defer source.Close(ctx)

	_, err = source.pool.Exec(ctx, `
CREATE TEMP TABLE mesas (id int PRIMARY KEY, numero int);
CREATE TEMP TABLE menu_items (id bigint PRIMARY KEY, name text, category_id bigint);
CREATE TEMP TABLE ordenes_restaurante (
  id text PRIMARY KEY, numero_orden text, mesa_id int, estado text, total numeric,
  nota text, created_at timestamptz, metodo_pago text, paid_at timestamptz);
CREATE TEMP TABLE orden_items (
  id text PRIMARY KEY, orden_id text, menu_item_id bigint, cantidad int,
  precio_unitario numeric, subtotal numeric, notas text, created_at timestamptz);
INSERT INTO menu_items VALUES (7, 'Shawarma', NULL);
INSERT INTO ordenes_restaurante VALUES ('o-1', 'ORD-1', NULL, 'paid', 1190, 'sin prisa', now(), 'efectivo', now());
INSERT INTO orden_items VALUES ('i-1', 'o-1', 7, 1, 1190, 1190, '{"salsas":["ajo"]}', now());
`)
	require.NoError(t, err)

	order, items, err := source.FindOrder(ctx, "o-1")
	require.NoError(t, err)

	_, hasTable := order.TableNumber()
	assert.False(t, hasTable)
	assert.True(t, order.HasNote())
	assert.True(t, order.HasPayment())
	require.Len(t, items, 1)
	assert.Nil(t, items[0].MenuItem.CategoryID)
	assert.Equal(t, `{"salsas":["ajo"]}`, items[0].Notes)

	_, _, err = source.FindOrder(ctx, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
