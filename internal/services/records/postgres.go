package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PostgresStore updates rows over a direct Postgres connection.
type PostgresStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPostgresStore(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access db handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	store := NewPostgresStoreWithDB(db, logger)
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return store, nil
}

func NewPostgresStoreWithDB(db *gorm.DB, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{db: db, logger: logger}
}

func (s *PostgresStore) UpdateRow(ctx context.Context, m Mutation) (int64, error) {
	where := make(map[string]interface{}, len(m.Filter))
	for column, value := range m.Filter {
		where[column] = value
	}

	result := s.db.WithContext(ctx).Table(m.Table).Where(where).Updates(m.Values)
	if result.Error != nil {
		return 0, classifyPgError(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, noRowsError(m)
	}

	s.logger.Debug("Row updated", zap.String("table", m.Table), zap.Int64("rows", result.RowsAffected))
	return result.RowsAffected, nil
}

func (s *PostgresStore) SelectAll(ctx context.Context, table string) ([]map[string]any, error) {
	var rows []map[string]any
	if err := s.db.WithContext(ctx).Table(table).Find(&rows).Error; err != nil {
		return nil, classifyPgError(err)
	}
	return rows, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &ClientError{
			Code:    pgErr.Code,
			Message: pgErr.Message,
			Details: pgErr.Detail,
			Hint:    pgErr.Hint,
		}
	}
	return err
}
