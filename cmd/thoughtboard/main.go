package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/thoughtboard/internal/board"
	"github.com/ajitpratap0/thoughtboard/internal/config"
	"github.com/ajitpratap0/thoughtboard/internal/metrics"
	"github.com/ajitpratap0/thoughtboard/internal/persistence"
	"github.com/ajitpratap0/thoughtboard/internal/store"
)

// version is set via ldflags at build time
var version = "dev"

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := fang.Execute(ctx, newRootCmd())
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "thoughtboard",
		Version: version,
		Short:   "Thoughtboard, a note board of memories and thought sheets",
		Long: `Thoughtboard keeps categories of knowledge (a name plus the relation it
expresses) and free-text thought sheets. Categories and knowledge items can be
dragged onto a thought, which keeps a snapshot of them. Every change is saved
immediately.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		showCmd(),
		categoryCmd(),
		knowledgeCmd(),
		thoughtCmd(),
		dragCmd(),
		dropCmd(),
		placeCmd(),
		unplaceCmd(),
		templateCmd(),
		resetCmd(),
		serveCmd(),
		mcpCmd(),
		watchCmd(),
	)
	return rootCmd
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newKV() (store.KV, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.Storage.Dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating storage dir: %w", err)
		}
		return store.NewSQLiteKV(cfg.Storage.SQLitePath())
	case config.BackendMemory:
		return store.NewMemoryKV(), nil
	default:
		return store.NewFileKV(cfg.Storage.Dir)
	}
}

// session is an opened board together with the resources behind it.
type session struct {
	board     *board.Board
	gateway   *persistence.Gateway
	kv        store.KV
	collector *metrics.PrometheusCollector // nil when metrics are disabled
}

// openBoard opens the configured backend and loads the saved board.
func openBoard(ctx context.Context, logger *slog.Logger) (*session, error) {
	kv, err := newKV()
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}
	gw := persistence.New(kv, cfg.Storage.Key, logger)

	opts := []board.Option{board.WithLogger(logger)}
	var collector *metrics.PrometheusCollector
	if cfg.Metrics.Enabled {
		collector = metrics.NewPrometheusCollector()
		opts = append(opts, board.WithMetrics(collector))
	}

	return &session{
		board:     board.New(gw.Load(ctx), gw, opts...),
		gateway:   gw,
		kv:        kv,
		collector: collector,
	}, nil
}

func (s *session) Close() error {
	return s.kv.Close()
}

// confirmHint points the user at --yes when a destructive command was not confirmed.
func confirmHint(err error) error {
	if errors.Is(err, board.ErrNotConfirmed) {
		return fmt.Errorf("%w (pass --yes to confirm)", err)
	}
	return err
}

// overwriteHint points the user at --force when a template already exists.
func overwriteHint(err error) error {
	if errors.Is(err, board.ErrTemplateExists) {
		return fmt.Errorf("%w (pass --force to overwrite)", err)
	}
	return err
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return s
}
