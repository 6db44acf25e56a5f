package records

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/supabase-community/postgrest-go"
	"go.uber.org/zap"
)

// postgrest-go flattens error bodies into "(code) message".
var postgrestErrorPattern = regexp.MustCompile(`^\(([^)]*)\) (.*)$`)

// PostgrestStore talks to Supabase through its PostgREST endpoint.
type PostgrestStore struct {
	client    *postgrest.Client
	pingTable string
	logger    *zap.Logger
}

func NewPostgrestStore(restURL, apiKey, schema, pingTable string, logger *zap.Logger) *PostgrestStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := postgrest.NewClient(restURL, schema, nil).
		SetApiKey(apiKey).
		SetAuthToken(apiKey)

	return &PostgrestStore{client: client, pingTable: pingTable, logger: logger}
}

func (s *PostgrestStore) UpdateRow(ctx context.Context, m Mutation) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	values, err := json.Marshal(m.Values)
	if err != nil {
		return 0, fmt.Errorf("failed to encode values: %w", err)
	}

	body, _, err := s.client.From(m.Table).
		Update(json.RawMessage(values), "representation", "").
		Match(m.Filter).
		Execute()
	if err != nil {
		return 0, classifyPostgrestError(err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode update response: %w", err)
	}
	if len(rows) == 0 {
		return 0, noRowsError(m)
	}

	s.logger.Debug("Row updated", zap.String("table", m.Table), zap.Int("rows", len(rows)))
	return int64(len(rows)), nil
}

func (s *PostgrestStore) SelectAll(ctx context.Context, table string) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []map[string]any
	if _, err := s.client.From(table).Select("*", "", false).ExecuteTo(&rows); err != nil {
		return nil, classifyPostgrestError(err)
	}
	return rows, nil
}

// Ping issues a HEAD select against the configured table.
func (s *PostgrestStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := s.client.From(s.pingTable).Select("*", "", true).Limit(1, "").Execute(); err != nil {
		return classifyPostgrestError(err)
	}
	return nil
}

func classifyPostgrestError(err error) error {
	match := postgrestErrorPattern.FindStringSubmatch(err.Error())
	if match == nil {
		return err
	}
	return &ClientError{Code: match[1], Message: match[2]}
}
