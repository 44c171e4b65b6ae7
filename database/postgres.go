package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-restaurant-printing/models"
)

type PostgresOrderSource struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool on DATABASE_URL and pings it.
func ConnectPostgres(ctx context.Context, dsn string) (*PostgresOrderSource, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresOrderSource{pool: pool}, nil
}

const selectOrder = `
SELECT o.id::text, o.numero_orden, COALESCE(o.mesa_id::text, ''), o.estado, o.total::float8,
       o.nota, o.created_at, o.metodo_pago, o.paid_at, m.numero
FROM ordenes_restaurante o
LEFT JOIN mesas m ON m.id = o.mesa_id
WHERE o.id::text = $1`

const selectOrderItems = `
SELECT i.id::text, i.menu_item_id, i.cantidad, i.precio_unitario::float8, i.subtotal::float8,
       COALESCE(i.notas, ''), mi.id, mi.name, mi.category_id
FROM orden_items i
LEFT JOIN menu_items mi ON mi.id = i.menu_item_id
WHERE i.orden_id::text = $1
ORDER BY i.created_at ASC`

func (s *PostgresOrderSource) FindOrder(ctx context.Context, orderID string) (models.Order, []models.OrderItem, error) {
	var (
		o           models.Order
		status      string
		tableNumber *int
	)
	err := s.pool.QueryRow(ctx, selectOrder, orderID).Scan(
		&o.ID, &o.OrderNumber, &o.TableID, &status, &o.Total,
		&o.Note, &o.CreatedAt, &o.PaymentMethod, &o.PaidAt, &tableNumber,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, nil, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, nil, fmt.Errorf("query order %s: %w", orderID, err)
	}
	o.Status = models.OrderStatus(status)
	if tableNumber != nil {
		o.Table = &models.TableRef{Number: *tableNumber}
	}

	rows, err := s.pool.Query(ctx, selectOrderItems, orderID)
	if err != nil {
		return models.Order{}, nil, fmt.Errorf("query items of %s: %w", orderID, err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var (
			it         models.OrderItem
			menuID     *int64
			menuName   *string
			categoryID *int64
		)
		if err := rows.Scan(&it.ID, &it.MenuItemID, &it.Quantity, &it.UnitPrice, &it.Subtotal,
			&it.Notes, &menuID, &menuName, &categoryID); err != nil {
			return models.Order{}, nil, fmt.Errorf("scan item of %s: %w", orderID, err)
		}
		if menuID != nil {
			it.MenuItem = &models.MenuItemRef{ID: *menuID, CategoryID: categoryID}
			if menuName != nil {
				it.MenuItem.Name = *menuName
			}
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return models.Order{}, nil, fmt.Errorf("read items of %s: %w", orderID, err)
	}
	return o, items, nil
}

func (s *PostgresOrderSource) Close(context.Context) error {
	s.pool.Close()
	return nil
}
