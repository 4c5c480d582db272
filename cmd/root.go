package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/cli"
	"github.com/theirongolddev/dayline/internal/config"
	"github.com/theirongolddev/dayline/internal/model"
	"github.com/theirongolddev/dayline/internal/pipeline"
	"github.com/theirongolddev/dayline/internal/remote"
	"github.com/theirongolddev/dayline/internal/store"
	"github.com/theirongolddev/dayline/internal/timeline"
)

var (
	flagDB       string
	flagUser     string
	flagDays     int
	flagToday    string
	flagLogLevel string
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:          "dayline",
	Short:        "Personal timeline, streaks and installments",
	Long:         "Merge shifts, tasks, appointments, card invoices and ledger entries into one timeline, and track habit and devotional streaks.",
	RunE:         runSummary,
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default from config or XDG data dir)")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "User ID (default from config)")
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "Window length in days (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "Pretend today is this YYYY-MM-DD day")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// app is the per-invocation wiring shared by every command.
type app struct {
	cfg   config.Config
	log   *logrus.Logger
	store *store.Store
	agg   *timeline.Aggregator
	loc   *time.Location
	user  string
	days  int
	now   func() time.Time
}

func (a *app) today() calendar.Date {
	return calendar.FromTime(a.now().In(a.loc))
}

// window returns [today, today+days) as instants in the app's zone.
func (a *app) window() (time.Time, time.Time) {
	today := a.today()
	return today.In(a.loc), today.AddDays(a.days).In(a.loc)
}

func (a *app) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// openApp loads config, builds the logger and opens the store. Callers must
// Close the result.
func openApp(daemonMode bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg, daemonMode)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	now := time.Now
	if flagToday != "" {
		d, err := calendar.Parse(flagToday)
		if err != nil {
			return nil, fmt.Errorf("--today: %w", err)
		}
		pinned := d.In(loc)
		now = func() time.Time { return pinned }
	}

	a := &app{
		cfg:  cfg,
		log:  log,
		loc:  loc,
		user: firstNonEmpty(flagUser, cfg.General.UserID),
		days: flagDays,
		now:  now,
	}
	if a.days <= 0 {
		a.days = cfg.General.DefaultDays
	}

	dbPath := firstNonEmpty(flagDB, cfg.General.DBPath, pipeline.DBPath())
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	a.store = st
	a.agg = newAggregator(a)

	log.WithFields(logrus.Fields{"db": dbPath, "user": a.user, "days": a.days}).Debug("dayline ready")
	return a, nil
}

// newAggregator wires the store into every timeline source. A configured
// remote service takes over shifts and appointments.
func newAggregator(a *app) *timeline.Aggregator {
	sources := timeline.Sources{
		Manual:       a.store,
		Shifts:       a.store,
		Tasks:        a.store,
		Appointments: a.store,
		Cards:        a.store,
		Ledger:       a.store,
	}
	if a.cfg.Remote.BaseURL != "" {
		client := remote.NewClient(a.cfg.Remote.BaseURL, config.GetRemoteToken(a.cfg), a.cfg.CollaboratorTimeout())
		if client != nil {
			sources.Shifts = client
			sources.Appointments = client
			a.log.WithField("base_url", a.cfg.Remote.BaseURL).Debug("using remote shifts and appointments")
		} else {
			a.log.WithField("base_url", a.cfg.Remote.BaseURL).Warn("ignoring invalid remote base_url")
		}
	}

	colors := make(map[model.EventKind]string, len(a.cfg.Timeline.Colors))
	for k, v := range a.cfg.Timeline.Colors {
		colors[model.EventKind(k)] = v
	}

	return timeline.New(sources,
		timeline.WithLogger(a.log),
		timeline.WithClock(a.now),
		timeline.WithLocation(a.loc),
		timeline.WithTimeout(a.cfg.CollaboratorTimeout()),
		timeline.WithDueSoon(a.cfg.Timeline.DueSoonDays),
		timeline.WithColors(colors),
	)
}

// newLogger resolves the level from --log-level, then config, then LOG_LEVEL.
func newLogger(cfg config.Config, daemonMode bool) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level := firstNonEmpty(flagLogLevel, cfg.Log.Level, os.Getenv("LOG_LEVEL"), "info")
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if flagQuiet && lvl > logrus.WarnLevel {
		lvl = logrus.WarnLevel
	}
	log.SetLevel(lvl)

	if daemonMode && strings.EqualFold(cfg.Log.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// warnDegraded prints the kinds left out of a timeline.
func warnDegraded(kinds []model.EventKind) {
	if len(kinds) == 0 {
		return
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	fmt.Fprintf(os.Stderr, "\n  Unavailable: %s (showing the rest)\n", strings.Join(names, ", "))
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}
