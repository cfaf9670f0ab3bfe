package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrEmptySessionID   = errors.New("snapshot has no session id")
)

// SnapshotRepository - keeps the live snapshot of each open session in redis,
// so a presentation process can render it. Entries expire with the session.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot entity.Snapshot) error
	DeleteByID(ctx context.Context, sessionID string) error
}

type dbSnapshot struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotRepository(client *redis.Client, ttl time.Duration) SnapshotRepository {
	return &dbSnapshot{
		client: client,
		ttl:    ttl,
	}
}

func SnapshotKey(sessionID string) string {
	return "session:" + sessionID
}

// EventsChannel - is where every saved snapshot of a session is published.
func EventsChannel(sessionID string) string {
	return "session:" + sessionID + ":events"
}

func (that *dbSnapshot) Save(ctx context.Context, snapshot entity.Snapshot) error {
	if snapshot.SessionID == "" {
		return ErrEmptySessionID
	}

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("could not marshal snapshot: %w", err)
	}

	pipe := that.client.TxPipeline()
	pipe.Set(ctx, SnapshotKey(snapshot.SessionID), snapshotJSON, that.ttl)
	pipe.Publish(ctx, EventsChannel(snapshot.SessionID), snapshotJSON)

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

func (that *dbSnapshot) DeleteByID(ctx context.Context, sessionID string) error {
	deleted, err := that.client.Del(ctx, SnapshotKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot by id: %w", err)
	}

	if deleted == 0 {
		return ErrSnapshotNotFound
	}

	return nil
}
