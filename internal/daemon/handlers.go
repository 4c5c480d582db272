package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/theirongolddev/dayline/internal/billing"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/model"
	"github.com/theirongolddev/dayline/internal/store"
	"github.com/theirongolddev/dayline/internal/streak"
	"github.com/theirongolddev/dayline/internal/timeline"
)

const maxRequestBody = 64 * 1024

// StreakItem is one trackable with its derived streak statistics.
type StreakItem struct {
	ID     string              `json:"id"`
	Kind   model.TrackableKind `json:"kind"`
	Label  string              `json:"label"`
	Streak model.StreakResult  `json:"streak"`
}

// StreaksResponse is served at /v1/streaks.
type StreaksResponse struct {
	Today calendar.Date     `json:"today"`
	Items []StreakItem      `json:"items"`
	Best  streak.BestStreak `json:"best"`
}

// InstallmentRequest is the POST /v1/installments body.
type InstallmentRequest struct {
	model.Purchase
	model.CardTerms
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("request")
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":  true,
		"now": s.now(),
	})
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

// handleTimeline serves the merged timeline for [from, to). Both bounds are
// optional YYYY-MM-DD days and default to the snapshot window.
func (s *Service) handleTimeline(w http.ResponseWriter, r *http.Request) {
	start, end, _ := s.window()
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		d, err := calendar.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("from: %w", err))
			return
		}
		start = d.In(s.cfg.Location)
	}
	if v := q.Get("to"); v != "" {
		d, err := calendar.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("to: %w", err))
			return
		}
		end = d.In(s.cfg.Location)
	}

	res, err := s.timeline.Collect(r.Context(), s.cfg.UserID, start, end)
	if err != nil {
		if timeline.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleStreaks(w http.ResponseWriter, r *http.Request) {
	kind := model.TrackableKind(r.URL.Query().Get("kind"))
	switch kind {
	case "", model.KindHabit, model.KindDevotional:
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown kind %q", kind))
		return
	}

	logs, err := s.trackables.ListTrackables(r.Context(), s.cfg.UserID, kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	_, _, today := s.window()
	resp := StreaksResponse{
		Today: today,
		Items: make([]StreakItem, 0, len(logs)),
		Best:  streak.ComputeBest(logs),
	}
	for _, t := range logs {
		res := streak.Compute(t, today)
		res.ItemID = t.ID
		resp.Items = append(resp.Items, StreakItem{ID: t.ID, Kind: t.Kind, Label: t.Label, Streak: res})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleInstallments(w http.ResponseWriter, r *http.Request) {
	var req InstallmentRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	rows, err := billing.Project(req.Purchase, req.CardTerms)
	if err != nil {
		if billing.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleToggle flips one day's completion. The day defaults to today.
func (s *Service) handleToggle(w http.ResponseWriter, r *http.Request) {
	item := mux.Vars(r)["item"]
	_, _, day := s.window()
	if v := r.URL.Query().Get("day"); v != "" {
		d, err := calendar.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("day: %w", err))
			return
		}
		day = d
	}

	c, err := s.trackables.Toggle(r.Context(), item, day)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Errorf("trackable %q not found", item))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.log.WithFields(logrus.Fields{"item": item, "day": day, "completed": c.Completed}).Info("completion toggled")
	s.Refresh(r.Context())
	writeJSON(w, http.StatusOK, c)
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	s.mu.RLock()
	events := s.events
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	out := make([]Event, len(events))
	copy(out, events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	s.mu.RLock()
	snap := s.snapshot
	hasSnap := s.hasSnapshot
	s.mu.RUnlock()

	if hasSnap {
		writeSSE(w, "snapshot", Event{
			Type:      "snapshot",
			Timestamp: s.now(),
			Snapshot:  snap,
		})
		flusher.Flush()
	}

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev.Type, ev)
			flusher.Flush()
		case <-keepAlive.C:
			_, _ = fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, eventName string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", eventName)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
