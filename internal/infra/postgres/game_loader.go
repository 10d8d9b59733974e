package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"blindtest-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// GameLoader loads game definition JSONB from Postgres.
type GameLoader struct {
	pool *pgxpool.Pool
}

func NewGameLoader(pool *pgxpool.Pool) *GameLoader {
	return &GameLoader{pool: pool}
}

func (l *GameLoader) LoadGame(ctx context.Context, gameID string) (domain.Game, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM games WHERE id=$1`, gameID).Scan(&raw)
	if err != nil {
		return domain.Game{}, fmt.Errorf("load game: %w", err)
	}
	var g domain.Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return domain.Game{}, fmt.Errorf("unmarshal game: %w", err)
	}
	return g, nil
}
