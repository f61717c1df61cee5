package orchestrator

import (
	"context"
	"strconv"
)

// ReconcileInFlight sweeps every request left without a terminal outcome
// and re-drives it from its recorded state. Runs at startup and on a cron
// so a crash mid-transfer never strands a request. PartiallyCompleted
// requests are not picked up here: re-crediting is an explicit Resume
// decision, not an automatic one.
func (o *Orchestrator) ReconcileInFlight(ctx context.Context) error {
	inFlight, err := o.store.BridgeRequest.FindInFlight(o.db)
	if err != nil {
		o.logger.Error("[ReconcileInFlight] listing in-flight requests failed", map[string]string{
			"error": err.Error(),
		})
		return err
	}

	if len(inFlight) == 0 {
		return nil
	}

	o.logger.Info("[ReconcileInFlight] recovering in-flight requests", map[string]string{
		"count": strconv.Itoa(len(inFlight)),
	})

	for i := range inFlight {
		req := inFlight[i]

		// a request with a live driver in this process is not stranded;
		// picking it up here would run both legs twice
		if !o.acquire(req.RequestID) {
			continue
		}

		if _, err := o.resumeInFlight(ctx, &req); err != nil {
			// a single stuck request must not block the rest of the sweep
			o.logger.Error("[ReconcileInFlight] recovery failed", map[string]string{
				"request_id": req.RequestID,
				"outcome":    string(req.TerminalOutcome),
				"error":      err.Error(),
			})
		}
		o.release(req.RequestID)

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
