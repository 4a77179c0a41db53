package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
	"github.com/secmon-lab/repovault/pkg/utils/safe"
)

// handleEvents streams events of the user room as server-sent events until the client goes away.
func handleEvents(uc interfaces.UseCase, heartbeat time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.From(ctx)

		sub, err := uc.SubscribeEvents(ctx, types.UserID(chi.URLParam(r, "userID")))
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer safe.Close(sub)

		rc := http.NewResponseController(w)
		// Streams outlive the server write timeout
		if err := rc.SetWriteDeadline(time.Time{}); err != nil {
			logger.Debug("write deadline is not supported", "error", err)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		send := func(format string, args ...any) bool {
			if _, err := fmt.Fprintf(w, format, args...); err != nil {
				logger.Debug("event stream closed", "error", err)
				return false
			}
			if err := rc.Flush(); err != nil {
				logger.Debug("fail to flush event stream", "error", err)
				return false
			}
			return true
		}

		if !send(": connected\n\n") {
			return
		}

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				raw, err := json.Marshal(ev)
				if err != nil {
					logger.Warn("fail to marshal event", "error", err)
					continue
				}
				if !send("event: %s\ndata: %s\n\n", ev.Type, raw) {
					return
				}

			case <-ticker.C:
				if !send(": ping\n\n") {
					return
				}
			}
		}
	}
}
