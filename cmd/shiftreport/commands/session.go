package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/midanish/PTEO-Shift-Report/pkg/config"
	"github.com/midanish/PTEO-Shift-Report/pkg/credentials"
	"github.com/midanish/PTEO-Shift-Report/pkg/observability"
	"github.com/midanish/PTEO-Shift-Report/pkg/persist"
	"github.com/midanish/PTEO-Shift-Report/pkg/sheets"
	"github.com/midanish/PTEO-Shift-Report/pkg/store"
	"github.com/midanish/PTEO-Shift-Report/pkg/terminal"
	"github.com/midanish/PTEO-Shift-Report/pkg/version"
)

// Backend opens the team spreadsheets.
type Backend interface {
	Reader(ctx context.Context, sheet config.SheetConfig) (sheets.Reader, error)
	Appender(ctx context.Context, sheet config.SheetConfig) (sheets.Appender, error)
}

// googleBackend opens sheets through one lazily created Sheets client.
type googleBackend struct {
	cfg    *config.Config
	client *sheets.Client
}

func newGoogleBackend(cfg *config.Config) Backend {
	return &googleBackend{cfg: cfg}
}

func (b *googleBackend) open(ctx context.Context, sheet config.SheetConfig) (*sheets.Sheet, error) {
	if b.client == nil {
		creds, err := credentials.Load(credentials.Sources{
			SecretsFile: b.cfg.Sheets.SecretsFile,
			KeyFile:     b.cfg.Sheets.CredentialsFile,
		})
		if err != nil {
			return nil, fmt.Errorf("error connecting to Google Sheets: %w", err)
		}

		client, err := sheets.NewClient(ctx, creds)
		if err != nil {
			return nil, fmt.Errorf("error connecting to Google Sheets: %w", err)
		}

		b.client = client
	}

	return b.client.Open(sheet.URL, sheet.Selector())
}

func (b *googleBackend) Reader(ctx context.Context, sheet config.SheetConfig) (sheets.Reader, error) {
	s, err := b.open(ctx, sheet)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (b *googleBackend) Appender(ctx context.Context, sheet config.SheetConfig) (sheets.Appender, error) {
	s, err := b.open(ctx, sheet)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// session is the per-invocation state every command runs with.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	metrics   *observability.REDMetrics
	store     *store.Store
	term      terminal.Config
}

// openSession loads configuration, starts telemetry and, when withStore is
// set, opens the shift session store.
func (a *App) openSession(cmd *cobra.Command, mode observability.AppMode, withStore bool) (*session, error) {
	cfg, err := config.LoadConfig(a.Options.ConfigPath)
	if err != nil {
		return nil, err
	}

	providers, err := observability.InitWithWriter(a.observabilityConfig(cfg, mode), cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	term := terminal.NewConfig()
	term.NoColor = term.NoColor || a.Options.NoColor

	sess := &session{cfg: cfg, providers: providers, metrics: metrics, term: term}

	if !withStore {
		return sess, nil
	}

	codec, err := persist.CodecByName(cfg.Session.Codec)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	dir := cfg.Session.Dir
	if a.Options.SessionDir != "" {
		dir = a.Options.SessionDir
	}

	sess.store, err = store.Open(dir, codec, store.WithObservability(providers, metrics))
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	providers.Logger.Debug("session opened", slog.String("path", sess.store.Path()))

	return sess, nil
}

func (a *App) observabilityConfig(cfg *config.Config, mode observability.AppMode) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Observability.Environment
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Observability.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Observability.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Observability.OTLPInsecure
	obsCfg.SampleRatio = cfg.Observability.SampleRatio
	obsCfg.LogLevel = observability.ParseLevel(cfg.Logging.Level)
	obsCfg.LogJSON = strings.EqualFold(cfg.Logging.Format, "json")

	switch {
	case a.Options.Quiet:
		obsCfg.LogLevel = slog.LevelError
	case a.Options.Verbose:
		obsCfg.LogLevel = slog.LevelDebug
	}

	return obsCfg
}

func (s *session) close(ctx context.Context) {
	err := s.providers.Shutdown(context.WithoutCancel(ctx))
	if err != nil {
		s.providers.Logger.Warn("observability shutdown failed", slog.Any("error", err))
	}
}

// printf writes user-facing output unless the quiet flag is set.
func (a *App) printf(w io.Writer, format string, args ...any) {
	if a.Options.Quiet {
		return
	}

	_, _ = fmt.Fprintf(w, format, args...)
}
