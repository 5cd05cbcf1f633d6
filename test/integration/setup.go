package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"elegance/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'customer',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS perfumes (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			brand VARCHAR(100) NOT NULL,
			description VARCHAR(500) NOT NULL,
			price BIGINT NOT NULL CHECK (price >= 0),
			stock INTEGER NOT NULL CHECK (stock >= 0),
			category VARCHAR(20) NOT NULL,
			image TEXT NOT NULL DEFAULT '',
			created_by UUID NOT NULL REFERENCES users(id),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS carts (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS cart_items (
			id UUID PRIMARY KEY,
			cart_id UUID NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
			perfume_id UUID NOT NULL REFERENCES perfumes(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			UNIQUE (cart_id, perfume_id)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			order_number VARCHAR(20) NOT NULL UNIQUE,
			shipping_first_name VARCHAR(100) NOT NULL DEFAULT '',
			shipping_last_name VARCHAR(100) NOT NULL DEFAULT '',
			shipping_email VARCHAR(255) NOT NULL DEFAULT '',
			shipping_phone VARCHAR(50) NOT NULL DEFAULT '',
			shipping_address VARCHAR(255) NOT NULL DEFAULT '',
			shipping_city VARCHAR(100) NOT NULL DEFAULT '',
			shipping_region VARCHAR(100) NOT NULL DEFAULT '',
			shipping_zip VARCHAR(20) NOT NULL DEFAULT '',
			subtotal BIGINT NOT NULL,
			shipping_cost BIGINT NOT NULL DEFAULT 0,
			total BIGINT NOT NULL,
			currency VARCHAR(10) NOT NULL,
			status VARCHAR(20) NOT NULL,
			payment_intent_id VARCHAR(255) NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			perfume_id UUID NOT NULL,
			name VARCHAR(100) NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			price BIGINT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
		CREATE INDEX IF NOT EXISTS idx_cart_items_cart_id ON cart_items(cart_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedUser inserts a user and returns it.
func SeedUser(t *testing.T, pool *pgxpool.Pool, email string, role model.Role) *model.User {
	t.Helper()

	ctx := context.Background()
	now := time.Now()
	user := &model.User{
		ID:           uuid.New(),
		Name:         "Seed User",
		Email:        email,
		PasswordHash: "$2a$10$seedseedseedseedseedseedseedseedseedseedseedseedseed",
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}

	return user
}

// SeedPerfume inserts a perfume with the given stock and returns it.
func SeedPerfume(t *testing.T, pool *pgxpool.Pool, createdBy uuid.UUID, name string, price int64, stock int) *model.Perfume {
	t.Helper()

	ctx := context.Background()
	now := time.Now()
	perfume := &model.Perfume{
		ID:          uuid.New(),
		Name:        name,
		Brand:       "Test Brand",
		Description: "A seeded fragrance",
		Price:       price,
		Stock:       stock,
		Category:    model.CategoryUnisex,
		CreatedBy:   createdBy,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO perfumes (id, name, brand, description, price, stock, category, image, created_by, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		perfume.ID, perfume.Name, perfume.Brand, perfume.Description, perfume.Price, perfume.Stock,
		perfume.Category, perfume.Image, perfume.CreatedBy, perfume.IsActive, perfume.CreatedAt, perfume.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to seed perfume %s: %v", name, err)
	}

	return perfume
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "cart_items", "carts", "perfumes", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
