package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gavelworks/gavel-stack/auction/internal/models"
	"github.com/gavelworks/gavel-stack/common/database"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Connection pool configuration
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

const auctionColumns = `id, seller, reserve_price, auction_end, status, make, model, year, color, mileage, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, auction *models.Auction) error {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	query := `
		INSERT INTO auctions
		(` + auctionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		auction.ID,
		auction.Seller,
		auction.ReservePrice,
		auction.AuctionEnd,
		auction.Status,
		auction.Make,
		auction.Model,
		auction.Year,
		auction.Color,
		auction.Mileage,
		auction.CreatedAt,
		auction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create auction: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`

	auction, err := scanAuction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}

	return auction, nil
}

// List returns auctions ordered by make, optionally restricted to records
// updated after req.UpdatedAfter.
func (r *PostgresRepository) List(ctx context.Context, req *models.ListAuctionsRequest) ([]*models.Auction, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	query := `SELECT ` + auctionColumns + ` FROM auctions`
	args := []interface{}{}

	if req != nil && req.UpdatedAfter != nil {
		query += ` WHERE updated_at > $1`
		args = append(args, *req.UpdatedAfter)
	}
	query += ` ORDER BY make, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	defer rows.Close()

	var auctions []*models.Auction
	for rows.Next() {
		auction, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		auctions = append(auctions, auction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read auctions: %w", err)
	}

	return auctions, nil
}

func (r *PostgresRepository) Update(ctx context.Context, auction *models.Auction) error {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	query := `
		UPDATE auctions
		SET reserve_price = $2, auction_end = $3, status = $4, make = $5,
		    model = $6, year = $7, color = $8, mileage = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		auction.ID,
		auction.ReservePrice,
		auction.AuctionEnd,
		auction.Status,
		auction.Make,
		auction.Model,
		auction.Year,
		auction.Color,
		auction.Mileage,
		auction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update auction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAuctionNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	result, err := r.pool.Exec(ctx, `DELETE FROM auctions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete auction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAuctionNotFound
	}

	return nil
}

func scanAuction(row pgx.Row) (*models.Auction, error) {
	var a models.Auction
	err := row.Scan(
		&a.ID,
		&a.Seller,
		&a.ReservePrice,
		&a.AuctionEnd,
		&a.Status,
		&a.Make,
		&a.Model,
		&a.Year,
		&a.Color,
		&a.Mileage,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
