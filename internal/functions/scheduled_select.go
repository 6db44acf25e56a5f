package functions

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/phambaophuc/face-detection/internal/logging"
	"github.com/phambaophuc/face-detection/internal/services/records"
	"go.uber.org/zap"
)

type scheduledEvent struct {
	NextRun string `json:"next_run"`
}

// ScheduledSelect reads every row of a table on a timer and logs what it saw.
type ScheduledSelect struct {
	store  records.Store
	table  string
	logger *zap.Logger
}

func NewScheduledSelect(store records.Store, table string, logger *zap.Logger) *ScheduledSelect {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduledSelect{store: store, table: table, logger: logger}
}

func (s *ScheduledSelect) Handle(ctx context.Context, event json.RawMessage) (Response, error) {
	log := logging.WithOperation(s.logger, "scheduled_select", requestIDFrom(ctx))

	// next_run is informational; a malformed event still triggers the run.
	var ev scheduledEvent
	if len(event) > 0 {
		if err := json.Unmarshal(event, &ev); err != nil {
			log.Warn("Ignoring malformed scheduler event", zap.Error(err))
		}
	}

	if s.store == nil {
		log.Error("Scheduled select failed", zap.Error(ErrStoreUnavailable))
		return respond(http.StatusInternalServerError, errorBody{Message: "An error occurred", Error: ErrStoreUnavailable.Error()}), nil
	}

	rows, err := s.store.SelectAll(ctx, s.table)
	if err != nil {
		log.Error("Scheduled select failed", zap.String("table", s.table), zap.Error(err))
		return respond(http.StatusInternalServerError, errorBody{Message: "An error occurred", Error: err.Error()}), nil
	}

	log.Info("Received scheduled event",
		zap.String("table", s.table),
		zap.Int("rows", len(rows)),
		zap.String("next_run", ev.NextRun))
	return respond(http.StatusOK, scheduledBody{Message: "Scheduled run complete", Rows: len(rows)}), nil
}
