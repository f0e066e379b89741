package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/nearby-assistant/internal/dto"
	"github.com/octobees/nearby-assistant/internal/entity"
)

const (
	defaultExchangeLimit = 50
	maxExchangeLimit     = 200
)

// ExchangesRepository persists completed chat exchanges.
type ExchangesRepository interface {
	Record(ctx context.Context, exchange *entity.Exchange) error
	List(ctx context.Context, filter dto.ExchangeFilter) ([]entity.Exchange, error)
}

// PGXExchangesRepository implements ExchangesRepository using pgx.
type PGXExchangesRepository struct {
	pool pgxPool
}

// NewPGXExchangesRepository wires a pgx backed repository.
func NewPGXExchangesRepository(pool *pgxpool.Pool) *PGXExchangesRepository {
	return &PGXExchangesRepository{pool: pool}
}

// Record inserts one exchange. Missing ids and timestamps are filled in.
func (r *PGXExchangesRepository) Record(ctx context.Context, exchange *entity.Exchange) error {
	if exchange == nil {
		return fmt.Errorf("exchange payload is nil")
	}
	if exchange.ID == uuid.Nil {
		exchange.ID = uuid.New()
	}
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now().UTC()
	}

	var requestID any
	if exchange.RequestID != "" {
		requestID = exchange.RequestID
	}

	const query = `
        INSERT INTO chat_exchanges (
            id, request_id, client_id, query, latitude, longitude,
            history_turns, tool_invoked, total, ai_response, error, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
	_, err := r.pool.Exec(ctx, query,
		exchange.ID,
		requestID,
		exchange.ClientID,
		exchange.Query,
		exchange.Latitude,
		exchange.Longitude,
		exchange.HistoryTurns,
		exchange.ToolInvoked,
		exchange.Total,
		exchange.AIResponse,
		exchange.Error,
		exchange.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}
	return nil
}

// List returns the most recent exchanges, newest first.
func (r *PGXExchangesRepository) List(ctx context.Context, filter dto.ExchangeFilter) ([]entity.Exchange, error) {
	query := strings.Builder{}
	query.WriteString(`
        SELECT id, request_id, client_id, query, latitude, longitude,
               history_turns, tool_invoked, total, ai_response, error, created_at
        FROM chat_exchanges
    `)

	var args []any
	if clientID := strings.TrimSpace(filter.ClientID); clientID != "" {
		args = append(args, clientID)
		query.WriteString(fmt.Sprintf(" WHERE client_id = $%d", len(args)))
	}
	args = append(args, normalizeLimit(filter.Limit))
	query.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)))

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer rows.Close()

	exchanges := make([]entity.Exchange, 0)
	for rows.Next() {
		var (
			ex        entity.Exchange
			requestID sql.NullString
			errText   sql.NullString
		)
		if err := rows.Scan(
			&ex.ID,
			&requestID,
			&ex.ClientID,
			&ex.Query,
			&ex.Latitude,
			&ex.Longitude,
			&ex.HistoryTurns,
			&ex.ToolInvoked,
			&ex.Total,
			&ex.AIResponse,
			&errText,
			&ex.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		ex.RequestID = requestID.String
		if errText.Valid {
			msg := errText.String
			ex.Error = &msg
		}
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchanges: %w", err)
	}
	return exchanges, nil
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultExchangeLimit
	case limit > maxExchangeLimit:
		return maxExchangeLimit
	default:
		return limit
	}
}
