package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/apperrors"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/database"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
)

// BrokerConnectionRepository provides data access for broker connections.
// Every read and mutation is scoped to the owning user in the statement
// itself; a non-owner sees the same result as a missing row.
type BrokerConnectionRepository interface {
	Create(ctx context.Context, conn *models.BrokerConnection) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.BrokerConnection, error)
	List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*models.BrokerConnection, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch models.BrokerConnectionPatch) (*models.BrokerConnection, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (*models.BrokerConnection, error)
}

type brokerConnectionRepository struct {
	db *database.DB
}

// NewBrokerConnectionRepository creates a new BrokerConnectionRepository.
func NewBrokerConnectionRepository(db *database.DB) BrokerConnectionRepository {
	return &brokerConnectionRepository{db: db}
}

var _ BrokerConnectionRepository = (*brokerConnectionRepository)(nil)

const brokerConnectionColumns = `id, user_id, broker_name, api_key_encrypted, account_id,
		is_paper_trading, is_connected, config, created_at, updated_at`

func (r *brokerConnectionRepository) Create(ctx context.Context, conn *models.BrokerConnection) error {
	now := time.Now().UTC()
	if conn.ID == uuid.Nil {
		conn.ID = uuid.New()
	}
	conn.CreatedAt = now
	conn.UpdatedAt = now

	query := `
		INSERT INTO broker_connections (
			id, user_id, broker_name, api_key_encrypted, account_id,
			is_paper_trading, is_connected, config, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Pool.Exec(ctx, query,
		conn.ID, conn.UserID, conn.BrokerName, conn.APIKeyEncrypted, conn.AccountID,
		conn.IsPaperTrading, conn.IsConnected, conn.Config, conn.CreatedAt, conn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create broker connection: %w", err)
	}

	return nil
}

func (r *brokerConnectionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.BrokerConnection, error) {
	query := `
		SELECT ` + brokerConnectionColumns + `
		FROM broker_connections
		WHERE id = $1 AND user_id = $2`

	row := r.db.Pool.QueryRow(ctx, query, id, userID)
	conn, err := scanBrokerConnection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get broker connection: %w", err)
	}
	return conn, nil
}

func (r *brokerConnectionRepository) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*models.BrokerConnection, error) {
	filter = filter.Normalize()

	query := `
		SELECT ` + brokerConnectionColumns + `
		FROM broker_connections
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Pool.Query(ctx, query, userID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list broker connections: %w", err)
	}
	defer rows.Close()

	conns := make([]*models.BrokerConnection, 0)
	for rows.Next() {
		c, err := scanBrokerConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan broker connection: %w", err)
		}
		conns = append(conns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating broker connections: %w", err)
	}

	return conns, nil
}

func (r *brokerConnectionRepository) Update(ctx context.Context, userID, id uuid.UUID, patch models.BrokerConnectionPatch) (*models.BrokerConnection, error) {
	var b setBuilder
	applyOpt(&b, "broker_name", patch.BrokerName)
	applyOpt(&b, "api_key_encrypted", patch.APIKeyEncrypted)
	applyOpt(&b, "account_id", patch.AccountID)
	applyOpt(&b, "is_paper_trading", patch.IsPaperTrading)
	applyOpt(&b, "is_connected", patch.IsConnected)
	applyOpt(&b, "config", patch.Config)

	if b.empty() {
		// Nothing to change; an empty patch still refreshes nothing.
		return r.GetByID(ctx, userID, id)
	}

	b.add("updated_at", time.Now().UTC())

	query := fmt.Sprintf(`
		UPDATE broker_connections
		%s
		WHERE id = $%d AND user_id = $%d
		RETURNING `+brokerConnectionColumns,
		b.set(), b.next(), b.next()+1)
	args := append(b.args, id, userID)

	row := r.db.Pool.QueryRow(ctx, query, args...)
	conn, err := scanBrokerConnection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update broker connection: %w", err)
	}
	return conn, nil
}

func (r *brokerConnectionRepository) Delete(ctx context.Context, userID, id uuid.UUID) (*models.BrokerConnection, error) {
	query := `
		DELETE FROM broker_connections
		WHERE id = $1 AND user_id = $2
		RETURNING ` + brokerConnectionColumns

	row := r.db.Pool.QueryRow(ctx, query, id, userID)
	conn, err := scanBrokerConnection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete broker connection: %w", err)
	}
	return conn, nil
}

func scanBrokerConnection(row pgx.Row) (*models.BrokerConnection, error) {
	var c models.BrokerConnection
	err := row.Scan(
		&c.ID, &c.UserID, &c.BrokerName, &c.APIKeyEncrypted, &c.AccountID,
		&c.IsPaperTrading, &c.IsConnected, &c.Config, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
