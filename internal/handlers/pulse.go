package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"architecta/internal/models"
	"architecta/internal/pulse"
)

// Pulse handles GET /api/pulse
func (h *Handler) Pulse(w http.ResponseWriter, r *http.Request) {
	summary := h.pulse.Summarize(r.Context(), h.ownerID(r), models.PulseSummary{})
	respondJSON(w, http.StatusOK, summary)
}

// PulseStream handles GET /api/pulse/stream. Each partial update is sent as
// a "pulse" server-sent event; the stream ends once loading clears.
func (h *Handler) PulseStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	owner := h.ownerID(r)
	if owner == "" {
		writeEvent(w, models.PulseSummary{})
		flusher.Flush()
		return
	}

	// A cycle publishes at most five summaries, so sends never block.
	updates := make(chan models.PulseSummary, 8)
	tracker := pulse.NewTracker(h.pulse, func(s models.PulseSummary) {
		updates <- s
	})

	ctx := r.Context()
	tracker.SetOwner(ctx, owner)
	defer tracker.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-updates:
			if err := writeEvent(w, s); err != nil {
				return
			}
			flusher.Flush()
			if !s.IsLoading {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, s models.PulseSummary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: pulse\ndata: %s\n\n", data)
	return err
}
