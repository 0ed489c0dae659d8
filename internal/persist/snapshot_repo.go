package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fragd/server/internal/savegame"
	"github.com/fragd/server/internal/world"
	"github.com/jackc/pgx/v5"
)

// SnapshotRepo is the Postgres snapshot store. Objects are kept as one
// JSONB document per snapshot.
type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

func (r *SnapshotRepo) Save(ctx context.Context, s *savegame.Snapshot) error {
	objects, err := json.Marshal(s.Objects)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", s.ID, err)
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO snapshots (id, level, tick, skill, killed_monsters, total_monsters, objects, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.Level, int64(s.Tick), s.Skill, s.Killed, s.Total, objects, s.Created,
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.ID, err)
	}
	return nil
}

func (r *SnapshotRepo) Load(ctx context.Context, id string) (*savegame.Snapshot, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT id, level, tick, skill, killed_monsters, total_monsters, objects, created_at
		 FROM snapshots WHERE id = $1`, id,
	)
	return scanSnapshot(row)
}

func (r *SnapshotRepo) Latest(ctx context.Context, level string) (*savegame.Snapshot, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT id, level, tick, skill, killed_monsters, total_monsters, objects, created_at
		 FROM snapshots WHERE level = $1
		 ORDER BY id DESC LIMIT 1`, level,
	)
	return scanSnapshot(row)
}

func (r *SnapshotRepo) Prune(ctx context.Context, level string, keep int) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM snapshots
		 WHERE level = $1 AND id NOT IN (
		     SELECT id FROM snapshots WHERE level = $1 ORDER BY id DESC LIMIT $2
		 )`, level, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots %s: %w", level, err)
	}
	return tag.RowsAffected(), nil
}

func (r *SnapshotRepo) Close() error {
	r.db.Close()
	return nil
}

func scanSnapshot(row pgx.Row) (*savegame.Snapshot, error) {
	var (
		s       savegame.Snapshot
		tick    int64
		objects []byte
		created time.Time
	)
	err := row.Scan(&s.ID, &s.Level, &tick, &s.Skill, &s.Killed, &s.Total, &objects, &created)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if err := json.Unmarshal(objects, &s.Objects); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.ID, err)
	}
	s.Tick = world.Tick(tick)
	s.Created = created.UTC()
	return &s, nil
}
