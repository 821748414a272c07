package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
	"invoicer/internal/logger"
)

// Blob is a keyed document row.
type Blob struct {
	Key       string `gorm:"column:doc_key;primaryKey;size:100"`
	Data      []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName pins the table name.
func (Blob) TableName() string { return "documents" }

// GormBackend stores the document as one row of the documents table.
type GormBackend struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewGormBackend migrates the documents table on db and returns a backend using it.
func NewGormBackend(ctx context.Context, db *gorm.DB) (*GormBackend, error) {
	if err := db.WithContext(ctx).AutoMigrate(&Blob{}); err != nil {
		return nil, fmt.Errorf("migrations failed: %w", err)
	}
	return &GormBackend{
		db:  db,
		log: logger.WithComponent("storage-gorm"),
	}, nil
}

// OpenSQLite opens (or creates) a sqlite database at dsn.
func OpenSQLite(ctx context.Context, dsn string) (*GormBackend, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite backend: DSN is required")
	}
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("sqlite connection failed: %w", err)
	}
	return NewGormBackend(ctx, db)
}

// OpenPostgres connects to postgres, retrying while the server starts up.
func OpenPostgres(ctx context.Context, dsn string) (*GormBackend, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres backend: DSN is required")
	}
	log := logger.WithComponent("storage-gorm")

	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), gormConfig())
		if err == nil {
			break
		}
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Msg("Postgres connection failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}
	return NewGormBackend(ctx, db)
}

func gormConfig() *gorm.Config {
	level := gormlogger.Silent
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		level = gormlogger.Info
	}
	return &gorm.Config{Logger: gormlogger.Default.LogMode(level)}
}

// Load reads the document row. A missing row yields nil data.
func (g *GormBackend) Load(ctx context.Context) ([]byte, error) {
	var blob Blob
	err := g.db.WithContext(ctx).Where("doc_key = ?", DocumentKey).First(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return blob.Data, nil
}

// Save upserts the document row.
func (g *GormBackend) Save(ctx context.Context, data []byte) error {
	blob := Blob{Key: DocumentKey, Data: data, UpdatedAt: time.Now()}
	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doc_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&blob).Error
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	g.log.Debug().Int("bytes", len(data)).Msg("Document row saved")
	return nil
}

// Close closes the underlying connection pool.
func (g *GormBackend) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
