// Package daemon provides the long-running background service that keeps a
// timeline and streak snapshot fresh and serves it over HTTP.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/model"
	"github.com/theirongolddev/dayline/internal/pipeline"
	"github.com/theirongolddev/dayline/internal/timeline"
)

// Config controls the daemon runtime behavior.
type Config struct {
	UserID       string
	Days         int
	Schedule     string
	Addr         string
	EventsBuffer int
	Location     *time.Location
}

// Timeline produces the merged event view.
// Implementations: timeline.Aggregator
type Timeline interface {
	Collect(ctx context.Context, userID string, start, end time.Time) (*timeline.Result, error)
}

// Trackables reads and toggles completion logs.
// Implementations: store.Store
type Trackables interface {
	ListTrackables(ctx context.Context, userID string, kind model.TrackableKind) ([]model.Trackable, error)
	Toggle(ctx context.Context, itemID string, day calendar.Date) (model.Completion, error)
}

// Snapshot is a compact timeline and streak state for status/event payloads.
type Snapshot struct {
	At            time.Time         `json:"at"`
	Events        int               `json:"events"`
	Overdue       int               `json:"overdue"`
	DueSoon       int               `json:"due_soon"`
	Pending       int               `json:"pending"`
	AmountDue     decimal.Decimal   `json:"amount_due"`
	OverdueAmount decimal.Decimal   `json:"overdue_amount"`
	Trackables    int               `json:"trackables"`
	ActiveStreaks int               `json:"active_streaks"`
	TargetsMet    int               `json:"targets_met"`
	BestStreak    int               `json:"best_streak"`
	BestOwner     string            `json:"best_owner,omitempty"`
	Degraded      []model.EventKind `json:"degraded,omitempty"`
}

// Delta captures snapshot changes between refreshes.
type Delta struct {
	Events        int             `json:"events"`
	Overdue       int             `json:"overdue"`
	DueSoon       int             `json:"due_soon"`
	Pending       int             `json:"pending"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	ActiveStreaks int             `json:"active_streaks"`
	TargetsMet    int             `json:"targets_met"`
}

func (d Delta) isZero() bool {
	return d.Events == 0 &&
		d.Overdue == 0 &&
		d.DueSoon == 0 &&
		d.Pending == 0 &&
		d.AmountDue.IsZero() &&
		d.ActiveStreaks == 0 &&
		d.TargetsMet == 0
}

// Event is emitted whenever the snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastRefreshAt   time.Time `json:"last_refresh_at"`
	Schedule        string    `json:"schedule"`
	RefreshCount    int64     `json:"refresh_count"`
	UserID          string    `json:"user_id"`
	Days            int       `json:"days"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg        Config
	timeline   Timeline
	trackables Trackables
	log        logrus.FieldLogger
	now        func() time.Time

	refreshMu sync.Mutex // serializes refreshes

	mu            sync.RWMutex
	startedAt     time.Time
	lastRefreshAt time.Time
	refreshCount  int64
	lastError     string
	hasSnapshot   bool
	snapshot      Snapshot
	nextEventID   int64
	events        []Event

	nextSubID int
	subs      map[int]chan Event
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a new daemon service with the provided config.
func New(cfg Config, tl Timeline, tr Trackables, opts ...Option) *Service {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 30s"
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Days < 1 {
		cfg.Days = 14
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Service{
		cfg:        cfg,
		timeline:   tl,
		trackables: tr,
		log:        discard,
		now:        time.Now,
		subs:       make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startedAt = s.now()
	return s
}

// Run starts HTTP endpoints and scheduled refreshes until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sched := cron.New()
	if _, err := sched.AddFunc(s.cfg.Schedule, func() { s.Refresh(ctx) }); err != nil {
		return fmt.Errorf("daemon schedule %q: %w", s.cfg.Schedule, err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.Refresh(ctx)
	sched.Start()
	s.log.WithFields(logrus.Fields{"addr": s.cfg.Addr, "schedule": s.cfg.Schedule}).Info("daemon started")

	select {
	case <-ctx.Done():
		<-sched.Stop().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		sched.Stop()
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// Handler returns the HTTP API router.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/v1/timeline", s.handleTimeline).Methods(http.MethodGet)
	r.HandleFunc("/v1/streaks", s.handleStreaks).Methods(http.MethodGet)
	r.HandleFunc("/v1/installments", s.handleInstallments).Methods(http.MethodPost)
	r.HandleFunc("/v1/completions/{item}/toggle", s.handleToggle).Methods(http.MethodPost)
	r.HandleFunc("/v1/events", s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/v1/stream", s.handleStream).Methods(http.MethodGet)
	return r
}

// window returns the snapshot window: today through Days days ahead.
func (s *Service) window() (time.Time, time.Time, calendar.Date) {
	today := calendar.FromTime(s.now().In(s.cfg.Location))
	start := today.In(s.cfg.Location)
	return start, today.AddDays(s.cfg.Days).In(s.cfg.Location), today
}

// Refresh recomputes the snapshot and publishes an event when it changed.
func (s *Service) Refresh(ctx context.Context) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start, end, today := s.window()
	snap, err := s.buildSnapshot(ctx, start, end, today)
	now := s.now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastRefreshAt = now
		s.refreshCount++
		s.mu.Unlock()
		s.log.WithError(err).Warn("snapshot refresh failed")
		return
	}
	snap.At = now

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastRefreshAt = now
	s.refreshCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "delta", Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func (s *Service) buildSnapshot(ctx context.Context, start, end time.Time, today calendar.Date) (Snapshot, error) {
	res, err := s.timeline.Collect(ctx, s.cfg.UserID, start, end)
	if err != nil {
		return Snapshot{}, fmt.Errorf("collecting timeline: %w", err)
	}
	logs, err := s.trackables.ListTrackables(ctx, s.cfg.UserID, "")
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing trackables: %w", err)
	}

	sum := pipeline.Summarize(res.Events, logs, today, s.cfg.Location)
	return Snapshot{
		Events:        sum.Events,
		Overdue:       sum.Overdue,
		DueSoon:       sum.DueSoon,
		Pending:       sum.Pending,
		AmountDue:     sum.AmountDue,
		OverdueAmount: sum.OverdueAmount,
		Trackables:    sum.Trackables,
		ActiveStreaks: sum.ActiveStreaks,
		TargetsMet:    sum.TargetsMet,
		BestStreak:    sum.BestStreak,
		BestOwner:     sum.BestOwner,
		Degraded:      res.Degraded,
	}, nil
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Events:        curr.Events - prev.Events,
		Overdue:       curr.Overdue - prev.Overdue,
		DueSoon:       curr.DueSoon - prev.DueSoon,
		Pending:       curr.Pending - prev.Pending,
		AmountDue:     curr.AmountDue.Sub(prev.AmountDue),
		ActiveStreaks: curr.ActiveStreaks - prev.ActiveStreaks,
		TargetsMet:    curr.TargetsMet - prev.TargetsMet,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastRefreshAt:   s.lastRefreshAt,
		Schedule:        s.cfg.Schedule,
		RefreshCount:    s.refreshCount,
		UserID:          s.cfg.UserID,
		Days:            s.cfg.Days,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
