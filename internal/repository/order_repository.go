package repository

import (
	"context"
	"errors"
	"fmt"

	"elegance/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `
	id, user_id, order_number,
	shipping_first_name, shipping_last_name, shipping_email, shipping_phone,
	shipping_address, shipping_city, shipping_region, shipping_zip,
	subtotal, shipping_cost, total, currency, status, payment_intent_id,
	created_at, updated_at
`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// CreatePending inserts a new pending order and its line items in a single
// transaction.
func (r *orderRepository) CreatePending(ctx context.Context, order *model.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (
			id, user_id, order_number,
			shipping_first_name, shipping_last_name, shipping_email, shipping_phone,
			shipping_address, shipping_city, shipping_region, shipping_zip,
			subtotal, shipping_cost, total, currency, status, payment_intent_id,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err = tx.Exec(ctx, orderQuery,
		order.ID, order.UserID, order.OrderNumber,
		order.Shipping.FirstName, order.Shipping.LastName, order.Shipping.Email, order.Shipping.Phone,
		order.Shipping.Address, order.Shipping.City, order.Shipping.Region, order.Shipping.Zip,
		order.Subtotal, order.ShippingCost, order.Total, order.Currency, order.Status, order.PaymentIntentID,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("payment_intent_id", order.PaymentIntentID).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if len(order.Items) > 0 {
		itemQuery := `
			INSERT INTO order_items (id, order_id, perfume_id, name, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`

		batch := &pgx.Batch{}
		for _, item := range order.Items {
			batch.Queue(itemQuery, item.ID, item.OrderID, item.PerfumeID, item.Name, item.Quantity, item.Price)
		}

		results := tx.SendBatch(ctx, batch)
		for i := 0; i < len(order.Items); i++ {
			if _, err := results.Exec(); err != nil {
				results.Close()
				r.logger.Error().
					Err(err).
					Str("order_id", order.ID.String()).
					Msg("failed to create order item")
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit order")
		return fmt.Errorf("failed to commit order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("payment_intent_id", order.PaymentIntentID).
		Msg("pending order created")

	return nil
}

// GetByPaymentIntent retrieves an order by payment reference, scoped to its
// owner.
func (r *orderRepository) GetByPaymentIntent(ctx context.Context, paymentIntentID string, userID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_intent_id = $1 AND user_id = $2`

	order, err := r.scanOrder(r.pool.QueryRow(ctx, query, paymentIntentID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("payment_intent_id", paymentIntentID).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("payment_intent_id", paymentIntentID).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// TransitionStatus atomically moves an order from one status to another. The
// conditional UPDATE is the compare-and-swap the reconciliation flow relies
// on; only one caller can win it.
func (r *orderRepository) TransitionStatus(ctx context.Context, paymentIntentID string, from, to model.OrderStatus) (*model.Order, error) {
	query := `
		UPDATE orders
		SET status = $3, updated_at = now()
		WHERE payment_intent_id = $1 AND status = $2
		RETURNING ` + orderColumns

	order, err := r.scanOrder(r.pool.QueryRow(ctx, query, paymentIntentID, from, to))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().
				Str("payment_intent_id", paymentIntentID).
				Str("from", string(from)).
				Str("to", string(to)).
				Msg("status transition did not apply")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("payment_intent_id", paymentIntentID).Msg("failed to transition order status")
		return nil, fmt.Errorf("failed to transition order status: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("order_id", order.ID.String()).
		Str("payment_intent_id", paymentIntentID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("order status transitioned")

	return order, nil
}

// SetStatus unconditionally sets an order's status.
func (r *orderRepository) SetStatus(ctx context.Context, paymentIntentID string, status model.OrderStatus) (*model.Order, error) {
	query := `
		UPDATE orders
		SET status = $2, updated_at = now()
		WHERE payment_intent_id = $1
		RETURNING ` + orderColumns

	order, err := r.scanOrder(r.pool.QueryRow(ctx, query, paymentIntentID, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("payment_intent_id", paymentIntentID).Msg("no order for payment reference")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("payment_intent_id", paymentIntentID).Msg("failed to set order status")
		return nil, fmt.Errorf("failed to set order status: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListByUser retrieves a user's orders, most recent first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

// GetByID retrieves an order by id, scoped to its owner.
func (r *orderRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`

	order, err := r.scanOrder(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// scanOrder scans a single order row in orderColumns order.
func (r *orderRepository) scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	err := row.Scan(
		&order.ID, &order.UserID, &order.OrderNumber,
		&order.Shipping.FirstName, &order.Shipping.LastName, &order.Shipping.Email, &order.Shipping.Phone,
		&order.Shipping.Address, &order.Shipping.City, &order.Shipping.Region, &order.Shipping.Zip,
		&order.Subtotal, &order.ShippingCost, &order.Total, &order.Currency, &order.Status, &order.PaymentIntentID,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// loadItems attaches line items to an order.
func (r *orderRepository) loadItems(ctx context.Context, order *model.Order) error {
	query := `
		SELECT id, order_id, perfume_id, name, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, order.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to query order items")
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.PerfumeID, &item.Name, &item.Quantity, &item.Price); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return fmt.Errorf("error iterating order items: %w", err)
	}

	order.Items = items
	return nil
}
