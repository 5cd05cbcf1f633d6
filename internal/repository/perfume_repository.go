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

const perfumeColumns = `
	id, name, brand, description, price, stock, category, image,
	created_by, is_active, created_at, updated_at
`

// perfumeRepository implements the PerfumeRepository interface using PostgreSQL.
type perfumeRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPerfumeRepository creates a new PostgreSQL-backed perfume repository.
func NewPerfumeRepository(pool *pgxpool.Pool, logger zerolog.Logger) PerfumeRepository {
	return &perfumeRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "perfume").Logger(),
	}
}

// Create inserts a new perfume.
func (r *perfumeRepository) Create(ctx context.Context, perfume *model.Perfume) error {
	query := `
		INSERT INTO perfumes (
			id, name, brand, description, price, stock, category, image,
			created_by, is_active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		perfume.ID, perfume.Name, perfume.Brand, perfume.Description,
		perfume.Price, perfume.Stock, perfume.Category, perfume.Image,
		perfume.CreatedBy, perfume.IsActive, perfume.CreatedAt, perfume.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("perfume_id", perfume.ID.String()).Msg("failed to create perfume")
		return fmt.Errorf("failed to create perfume: %w", err)
	}

	return nil
}

// GetAll retrieves active perfumes matching the filter, newest first.
func (r *perfumeRepository) GetAll(ctx context.Context, filter model.PerfumeFilter) ([]model.Perfume, error) {
	query := `SELECT ` + perfumeColumns + ` FROM perfumes WHERE is_active = true`
	args := []any{}
	arg := 0

	if filter.Category != "" {
		arg++
		query += fmt.Sprintf(" AND category = $%d", arg)
		args = append(args, filter.Category)
	}
	if filter.MinPrice != nil {
		arg++
		query += fmt.Sprintf(" AND price >= $%d", arg)
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		arg++
		query += fmt.Sprintf(" AND price <= $%d", arg)
		args = append(args, *filter.MaxPrice)
	}
	if filter.Search != "" {
		arg++
		query += fmt.Sprintf(" AND (name ILIKE $%d OR brand ILIKE $%d)", arg, arg)
		args = append(args, "%"+filter.Search+"%")
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query perfumes")
		return nil, fmt.Errorf("failed to query perfumes: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// GetByID retrieves a single perfume by id.
func (r *perfumeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Perfume, error) {
	query := `SELECT ` + perfumeColumns + ` FROM perfumes WHERE id = $1`

	perfume, err := scanPerfume(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("perfume_id", id.String()).Msg("perfume not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("perfume_id", id.String()).Msg("failed to query perfume")
		return nil, fmt.Errorf("failed to query perfume: %w", err)
	}

	return perfume, nil
}

// GetByIDs retrieves multiple perfumes by their ids.
func (r *perfumeRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Perfume, error) {
	if len(ids) == 0 {
		return []model.Perfume{}, nil
	}

	query := `SELECT ` + perfumeColumns + ` FROM perfumes WHERE id = ANY($1) ORDER BY name`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query perfumes by ids")
		return nil, fmt.Errorf("failed to query perfumes by ids: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Update persists changes to a perfume.
func (r *perfumeRepository) Update(ctx context.Context, perfume *model.Perfume) error {
	query := `
		UPDATE perfumes
		SET name = $2, brand = $3, description = $4, price = $5, stock = $6,
			category = $7, image = $8, is_active = $9, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		perfume.ID, perfume.Name, perfume.Brand, perfume.Description,
		perfume.Price, perfume.Stock, perfume.Category, perfume.Image, perfume.IsActive,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("perfume_id", perfume.ID.String()).Msg("failed to update perfume")
		return fmt.Errorf("failed to update perfume: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrPerfumeNotFound
	}

	return nil
}

// Deactivate soft-deletes a perfume.
func (r *perfumeRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE perfumes SET is_active = false, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("perfume_id", id.String()).Msg("failed to deactivate perfume")
		return fmt.Errorf("failed to deactivate perfume: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrPerfumeNotFound
	}

	return nil
}

// DecrementStockBatch applies all decrements in a single batch. Each UPDATE
// is atomic for its row and floors stock at zero, so the stock counter never
// goes negative under concurrent decrements.
func (r *perfumeRepository) DecrementStockBatch(ctx context.Context, decrements []model.StockDecrement) error {
	if len(decrements) == 0 {
		return nil
	}

	query := `
		UPDATE perfumes
		SET stock = GREATEST(stock - $2, 0), updated_at = now()
		WHERE id = $1
	`

	batch := &pgx.Batch{}
	for _, dec := range decrements {
		batch.Queue(query, dec.PerfumeID, dec.Quantity)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(decrements); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("perfume_id", decrements[i].PerfumeID.String()).
				Int("quantity", decrements[i].Quantity).
				Msg("failed to decrement stock")
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
	}

	r.logger.Debug().Int("count", len(decrements)).Msg("stock decremented")

	return nil
}

func (r *perfumeRepository) collect(rows pgx.Rows) ([]model.Perfume, error) {
	var perfumes []model.Perfume
	for rows.Next() {
		perfume, err := scanPerfume(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan perfume row")
			return nil, fmt.Errorf("failed to scan perfume: %w", err)
		}
		perfumes = append(perfumes, *perfume)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating perfume rows")
		return nil, fmt.Errorf("error iterating perfumes: %w", err)
	}

	return perfumes, nil
}

func scanPerfume(row pgx.Row) (*model.Perfume, error) {
	var p model.Perfume
	err := row.Scan(
		&p.ID, &p.Name, &p.Brand, &p.Description, &p.Price, &p.Stock,
		&p.Category, &p.Image, &p.CreatedBy, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
