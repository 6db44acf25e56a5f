package records

import (
	"context"
	"fmt"

	"github.com/phambaophuc/face-detection/internal/config"
	"go.uber.org/zap"
)

// Mutation describes a single-row update: set Values where every Filter column matches.
type Mutation struct {
	Table  string
	Filter map[string]string
	Values map[string]any
}

// MutationFromConfig builds the configured update target.
func MutationFromConfig(cfg config.RecordsConfig) Mutation {
	return Mutation{
		Table:  cfg.Table,
		Filter: map[string]string{cfg.FilterColumn: cfg.FilterValue},
		Values: cfg.Values,
	}
}

// Store is the database capability used by the serverless functions.
// Implementations are created once per process and safe for concurrent use.
type Store interface {
	UpdateRow(ctx context.Context, m Mutation) (int64, error)
	SelectAll(ctx context.Context, table string) ([]map[string]any, error)
	Ping(ctx context.Context) error
}

// ClientError is a failure reported by the database itself, as opposed to a
// transport or programming error.
type ClientError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *ClientError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("(%s) %s", e.Code, e.Message)
}

const CodeNoRows = "no_rows"

func noRowsError(m Mutation) *ClientError {
	return &ClientError{
		Code:    CodeNoRows,
		Message: fmt.Sprintf("no rows in %s matched the filter", m.Table),
		Details: fmt.Sprintf("filter: %v", m.Filter),
		Hint:    "check the filter column and value",
	}
}

// New opens the store selected by cfg.Records.Backend.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Records.Backend {
	case config.BackendPostgrest:
		return NewPostgrestStore(cfg.Supabase.URL+"/rest/v1", cfg.Supabase.KEY, cfg.Records.Schema, cfg.Records.Table, logger), nil
	case config.BackendPostgres:
		store, err := NewPostgresStore(ctx, cfg.Records.DSN, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown records backend %q", cfg.Records.Backend)
	}
}
