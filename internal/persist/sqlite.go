package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fragd/server/internal/savegame"
	"github.com/fragd/server/internal/world"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SnapshotRow is the SQLite table layout of a snapshot.
type SnapshotRow struct {
	ID             string `gorm:"primaryKey;size:27"`
	Level          string `gorm:"size:64;index:idx_snapshot_level"`
	Tick           uint64
	Skill          int
	KilledMonsters int
	TotalMonsters  int
	Objects        datatypes.JSON
	CreatedAt      time.Time
}

func (SnapshotRow) TableName() string { return "snapshots" }

// SQLiteStore is the embedded snapshot store used for local servers and
// tests. It needs no external database.
type SQLiteStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// OpenSQLite opens (or creates) the database at path. An empty path keeps
// the database in memory.
func OpenSQLite(path string, log *zap.Logger) (*SQLiteStore, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// One connection: an in-memory database is private to its connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	if err := db.AutoMigrate(&SnapshotRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	log.Info("using sqlite save store", zap.String("path", dsn))
	return &SQLiteStore{db: db, log: log}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap *savegame.Snapshot) error {
	objects, err := json.Marshal(snap.Objects)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", snap.ID, err)
	}
	row := SnapshotRow{
		ID:             snap.ID,
		Level:          snap.Level,
		Tick:           uint64(snap.Tick),
		Skill:          snap.Skill,
		KilledMonsters: snap.Killed,
		TotalMonsters:  snap.Total,
		Objects:        datatypes.JSON(objects),
		CreatedAt:      snap.Created,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*savegame.Snapshot, error) {
	var row SnapshotRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	return rowSnapshot(&row, err)
}

func (s *SQLiteStore) Latest(ctx context.Context, level string) (*savegame.Snapshot, error) {
	var row SnapshotRow
	err := s.db.WithContext(ctx).Where("level = ?", level).Order("id DESC").Take(&row).Error
	return rowSnapshot(&row, err)
}

func (s *SQLiteStore) Prune(ctx context.Context, level string, keep int) (int64, error) {
	newest := s.db.Model(&SnapshotRow{}).Select("id").
		Where("level = ?", level).Order("id DESC").Limit(keep)
	res := s.db.WithContext(ctx).
		Where("level = ? AND id NOT IN (?)", level, newest).
		Delete(&SnapshotRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune snapshots %s: %w", level, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func rowSnapshot(row *SnapshotRow, err error) (*savegame.Snapshot, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	snap := &savegame.Snapshot{
		ID:      row.ID,
		Level:   row.Level,
		Tick:    world.Tick(row.Tick),
		Created: row.CreatedAt.UTC(),
		Skill:   row.Skill,
		Killed:  row.KilledMonsters,
		Total:   row.TotalMonsters,
	}
	if err := json.Unmarshal(row.Objects, &snap.Objects); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", row.ID, err)
	}
	return snap, nil
}
