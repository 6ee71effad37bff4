package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eyira/storefront/pkg/db/models"
)

// PostgresStore persists processed sessions in the processed_sessions table.
// The primary key on session_id makes concurrent marks from several instances safe.
type PostgresStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("database connection is required")
	}
	return &PostgresStore{db: db, now: time.Now}, nil
}

func (p *PostgresStore) HasProcessed(ctx context.Context, sessionID string) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&models.ProcessedSession{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check processed session: %w", err)
	}
	return count > 0, nil
}

func (p *PostgresStore) MarkProcessed(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return errors.New("session id is required")
	}
	row := models.ProcessedSession{SessionID: sessionID, ProcessedAt: p.now().UTC()}
	err := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "session_id"}}, DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("mark processed session: %w", err)
	}
	return nil
}
