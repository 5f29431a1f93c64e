// Package store keeps the before and after snapshots of the current shift.
//
// A Store is owned by its caller and passed explicitly to whoever needs it.
// It may be memory-only or backed by a session file, in which case every
// mutation is written through atomically so later invocations in the same
// shift see it.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/midanish/PTEO-Shift-Report/pkg/classify"
	"github.com/midanish/PTEO-Shift-Report/pkg/filter"
	"github.com/midanish/PTEO-Shift-Report/pkg/lot"
	"github.com/midanish/PTEO-Shift-Report/pkg/observability"
	"github.com/midanish/PTEO-Shift-Report/pkg/persist"
	"github.com/midanish/PTEO-Shift-Report/pkg/sheets"
)

// ErrCaptureFailed wraps upstream read failures during CaptureFrom.
var ErrCaptureFailed = errors.New("capture failed")

const sessionBasename = "session"

// Session is the persisted store content.
type Session struct {
	Before      *lot.Snapshot `json:"before,omitempty"`
	After       *lot.Snapshot `json:"after,omitempty"`
	BeforeTotal int           `json:"before_total"`
	AfterTotal  int           `json:"after_total"`
	AnalyzedAt  time.Time     `json:"analyzed_at,omitzero"`
}

func (s Session) snapshot(tag lot.Tag) *lot.Snapshot {
	if tag == lot.TagBefore {
		return s.Before
	}

	return s.After
}

func (s *Session) set(tag lot.Tag, snap *lot.Snapshot, total int) {
	if tag == lot.TagBefore {
		s.Before, s.BeforeTotal = snap, total
	} else {
		s.After, s.AfterTotal = snap, total
	}

	s.AnalyzedAt = time.Time{}
}

// Status summarizes what the store holds.
type Status struct {
	BeforeCaptured bool
	AfterCaptured  bool
	BeforeAt       time.Time
	AfterAt        time.Time
	BeforeLots     int
	AfterLots      int
	BeforeTotal    int
	AfterTotal     int
	Analyzed       bool
	AnalyzedAt     time.Time
}

// Ready reports whether both snapshots are present.
func (st Status) Ready() bool {
	return st.BeforeCaptured && st.AfterCaptured
}

// Option configures a Store.
type Option func(*Store)

// WithObservability attaches tracing, metrics and logging to CaptureFrom.
func WithObservability(providers observability.Providers, metrics *observability.REDMetrics) Option {
	return func(s *Store) {
		s.obs = providers
		s.metrics = metrics
	}
}

// Store holds at most one snapshot per tag. The mutex keeps map access
// memory-safe; concurrent writers still race on content and the last wins.
type Store struct {
	mu        sync.Mutex
	session   Session
	persister *persist.Persister[Session]
	obs       observability.Providers
	metrics   *observability.REDMetrics
}

// New returns an empty memory-only store.
func New(opts ...Option) *Store {
	s := &Store{obs: observability.Noop()}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Open returns a store backed by a session file in dir, loading the previous
// session when one exists.
func Open(dir string, codec persist.Codec, opts ...Option) (*Store, error) {
	s := New(opts...)
	s.persister = persist.NewPersister[Session](dir, sessionBasename, codec)

	saved, err := s.persister.Load()

	switch {
	case errors.Is(err, persist.ErrNoState):
	case err != nil:
		return nil, fmt.Errorf("load session %s: %w", s.persister.Path(), err)
	default:
		s.session = *saved
	}

	return s, nil
}

// Path returns the session file path, or "" for a memory-only store.
func (s *Store) Path() string {
	if s.persister == nil {
		return ""
	}

	return s.persister.Path()
}

// Capture stores snap under tag, replacing any previous snapshot, and returns
// its distinct lot count. A nil snapshot is stored as an empty one.
func (s *Store) Capture(tag lot.Tag, snap *lot.Snapshot) (int, error) {
	if snap == nil {
		snap = lot.NewSnapshot(tag, nil, nil)
	}

	return s.capture(tag, snap, snap.LotCount())
}

func (s *Store) capture(tag lot.Tag, snap *lot.Snapshot, total int) (int, error) {
	if _, err := lot.ParseTag(string(tag)); err != nil {
		return 0, err
	}

	stored := *snap
	stored.Tag = tag

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.session
	next.set(tag, &stored, total)

	err := s.commit(next)
	if err != nil {
		return 0, err
	}

	return stored.LotCount(), nil
}

// commit persists next and only then makes it current. Callers hold mu.
func (s *Store) commit(next Session) error {
	if s.persister != nil {
		err := s.persister.Save(&next)
		if err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}

	s.session = next

	return nil
}

// Get returns the snapshot stored under tag.
func (s *Store) Get(tag lot.Tag) (*lot.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.session.snapshot(tag)

	return snap, snap != nil
}

// Pair returns both snapshots; either may be nil.
func (s *Store) Pair() (before, after *lot.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.session.Before, s.session.After
}

// ClearAll empties the store and removes the session file.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persister != nil {
		err := s.persister.Remove()
		if err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}

	s.session = Session{}

	return nil
}

// MarkAnalyzed records that the current pair has been analyzed.
func (s *Store) MarkAnalyzed(at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.session
	next.AnalyzedAt = at.UTC()

	return s.commit(next)
}

// Status reports the capture and analysis state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		BeforeTotal: s.session.BeforeTotal,
		AfterTotal:  s.session.AfterTotal,
		AnalyzedAt:  s.session.AnalyzedAt,
		Analyzed:    !s.session.AnalyzedAt.IsZero(),
	}

	if b := s.session.Before; b != nil {
		st.BeforeCaptured, st.BeforeAt, st.BeforeLots = true, b.CapturedAt, b.LotCount()
	}

	if a := s.session.After; a != nil {
		st.AfterCaptured, st.AfterAt, st.AfterLots = true, a.CapturedAt, a.LotCount()
	}

	return st
}

// CaptureFrom reads the sheet, keeps its critical rows and stores them under
// tag. A read failure returns ErrCaptureFailed and leaves the store as it was.
func (s *Store) CaptureFrom(ctx context.Context, tag lot.Tag, reader sheets.Reader, policy classify.Policy) (filter.Stats, error) {
	ctx, span := s.obs.Tracer.Start(ctx, "shiftreport.capture")
	defer span.End()

	span.SetAttributes(attribute.String("snapshot.tag", string(tag)))

	done := s.metrics.Start(ctx, observability.OpCapture)

	stats, err := s.captureFrom(ctx, tag, reader, policy)

	done(err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.obs.Logger.ErrorContext(ctx, "capture failed", slog.String("tag", string(tag)), slog.Any("error", err))

		return filter.Stats{}, err
	}

	span.SetAttributes(
		attribute.Int("lots.total", stats.TotalLots),
		attribute.Int("lots.critical", stats.CriticalLots),
	)

	s.obs.Logger.InfoContext(ctx, "snapshot captured",
		slog.String("tag", string(tag)),
		slog.Int("total_lots", stats.TotalLots),
		slog.Int("critical_lots", stats.CriticalLots),
	)

	return stats, nil
}

func (s *Store) captureFrom(ctx context.Context, tag lot.Tag, reader sheets.Reader, policy classify.Policy) (filter.Stats, error) {
	if _, err := lot.ParseTag(string(tag)); err != nil {
		return filter.Stats{}, err
	}

	table, err := reader.ReadRecords(ctx)
	if err != nil {
		return filter.Stats{}, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	raw := lot.FromRecords(tag, table.Header, table.Records)
	critical, stats := filter.CriticalWithStats(raw, policy)

	_, err = s.capture(tag, critical, stats.TotalLots)
	if err != nil {
		return filter.Stats{}, err
	}

	return stats, nil
}
