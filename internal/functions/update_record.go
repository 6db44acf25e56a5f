package functions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/phambaophuc/face-detection/internal/logging"
	"github.com/phambaophuc/face-detection/internal/services/records"
	"go.uber.org/zap"
)

var ErrStoreUnavailable = errors.New("records store is not configured")

// RecordUpdater applies one configured mutation per invocation. The event is ignored;
// repeated invocations repeat the same overwrite.
type RecordUpdater struct {
	store    records.Store
	mutation records.Mutation
	logger   *zap.Logger
}

func NewRecordUpdater(store records.Store, mutation records.Mutation, logger *zap.Logger) *RecordUpdater {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordUpdater{store: store, mutation: mutation, logger: logger}
}

func (u *RecordUpdater) Handle(ctx context.Context, event json.RawMessage) (Response, error) {
	log := logging.WithOperation(u.logger, "update_record", requestIDFrom(ctx))

	if u.store == nil {
		log.Error("Record update failed", zap.Error(ErrStoreUnavailable))
		return respond(http.StatusInternalServerError, errorBody{Message: "An error occurred", Error: ErrStoreUnavailable.Error()}), nil
	}

	rows, err := u.store.UpdateRow(ctx, u.mutation)
	if err != nil {
		var clientErr *records.ClientError
		if errors.As(err, &clientErr) {
			log.Warn("Database rejected record update",
				zap.String("table", u.mutation.Table),
				zap.String("code", clientErr.Code),
				zap.String("message", clientErr.Message))
			return respond(http.StatusInternalServerError, errorBody{Message: "Failed to update record", Error: clientErr}), nil
		}

		log.Error("Record update failed", zap.String("table", u.mutation.Table), zap.Error(err))
		return respond(http.StatusInternalServerError, errorBody{Message: "An error occurred", Error: err.Error()}), nil
	}

	log.Info("Record updated", zap.String("table", u.mutation.Table), zap.Int64("rows", rows))
	return respond(http.StatusOK, messageBody{Message: "Record updated successfully"}), nil
}
