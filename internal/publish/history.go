package publish

import (
	"context"
	"time"

	"github.com/wassimk/elgato-light/internal/executor"
	"github.com/wassimk/elgato-light/internal/history"
	"github.com/wassimk/elgato-light/internal/infrastructure/logging"
)

// recordTimeout bounds the history write, which still runs after Ctrl+C.
const recordTimeout = 2 * time.Second

// HistoryRecorder stores one history record per outcome.
type HistoryRecorder struct {
	repo   history.Repository
	logger *logging.Logger
}

// NewHistoryRecorder returns an observer writing to repo.
func NewHistoryRecorder(repo history.Repository, logger *logging.Logger) *HistoryRecorder {
	return &HistoryRecorder{
		repo:   repo,
		logger: logger.With("component", "publish.history"),
	}
}

// Observe implements executor.Observer.
func (h *HistoryRecorder) Observe(ctx context.Context, r executor.Report) {
	if len(r.Outcomes) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := h.repo.Create(ctx, Records(r)...); err != nil {
		h.logger.Warn("failed to record command history", "invocation", r.ID, "error", err)
	}
}

// Records converts a report into history records sharing its timestamp.
func Records(r executor.Report) []*history.Record {
	records := make([]*history.Record, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		rec := &history.Record{
			InvocationID: r.ID,
			Operation:    r.Operation.Name(),
			Argument:     r.Operation.Argument(),
			TargetName:   o.Target.Name,
			Address:      o.Target.HostPort(),
			Success:      o.OK(),
			CreatedAt:    r.StartedAt,
		}
		if o.OK() {
			rec.On = o.State.On
			rec.Brightness = o.State.Brightness
			rec.TemperatureKelvin = o.State.Kelvin()
		} else {
			rec.Error = o.Err.Error()
		}
		records = append(records, rec)
	}
	return records
}
