package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midanish/PTEO-Shift-Report/pkg/config"
	"github.com/midanish/PTEO-Shift-Report/pkg/export"
	"github.com/midanish/PTEO-Shift-Report/pkg/lot"
	"github.com/midanish/PTEO-Shift-Report/pkg/observability"
	"github.com/midanish/PTEO-Shift-Report/pkg/sheets"
	"github.com/midanish/PTEO-Shift-Report/pkg/summary"
)

var errOffline = errors.New("dial tcp: network is unreachable")

// fakeBackend serves in-memory sheets keyed by URL.
type fakeBackend struct {
	mu       sync.Mutex
	tables   map[string]sheets.Table
	appended map[string][][]string
	openErr  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{tables: map[string]sheets.Table{}, appended: map[string][][]string{}}
}

func (b *fakeBackend) setTable(url string, table sheets.Table) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tables[url] = table
}

func (b *fakeBackend) rows(url string) [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.appended[url]
}

type fakeSheet struct {
	backend *fakeBackend
	url     string
}

func (s fakeSheet) ReadRecords(context.Context) (sheets.Table, error) {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	return s.backend.tables[s.url], nil
}

func (s fakeSheet) AppendRows(_ context.Context, rows [][]string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	s.backend.appended[s.url] = append(s.backend.appended[s.url], rows...)

	return nil
}

func (b *fakeBackend) Reader(_ context.Context, sheet config.SheetConfig) (sheets.Reader, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}

	return fakeSheet{backend: b, url: sheet.URL}, nil
}

func (b *fakeBackend) Appender(_ context.Context, sheet config.SheetConfig) (sheets.Appender, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}

	return fakeSheet{backend: b, url: sheet.URL}, nil
}

var testNow = time.Date(2026, 10, 17, 22, 0, 0, 0, time.UTC)

type harness struct {
	backend    *fakeBackend
	configPath string
	dir        string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "shiftreport.yaml")
	content := "session:\n  dir: " + filepath.Join(dir, "session") + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	return &harness{backend: newFakeBackend(), configPath: configPath, dir: dir}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	app := &App{
		NewBackend: func(*config.Config) Backend { return h.backend },
		Now:        func() time.Time { return testNow },
		Stdin:      strings.NewReader(stdin),
	}

	var stdout, stderr bytes.Buffer

	cmd := NewRootCommand(app)
	cmd.SetArgs(append([]string{"--config", h.configPath, "--no-color"}, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetContext(context.Background())

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func lotsTable(rows ...[4]string) sheets.Table {
	header := []string{lot.ColLotNumber, lot.ColQty, lot.ColOTDStatus, lot.ColCategory}
	records := make([]map[string]string, 0, len(rows))

	for _, r := range rows {
		records = append(records, map[string]string{
			lot.ColLotNumber: r[0], lot.ColQty: r[1], lot.ColOTDStatus: r[2], lot.ColCategory: r[3],
		})
	}

	return sheets.Table{Header: header, Records: records}
}

var (
	beforeLots = lotsTable(
		[4]string{"A", "100", "5 OVERDUE", "NORMAL"},
		[4]string{"B", "10", "ON TIME", "NORMAL"},
		[4]string{"C", "50", "3 NEAR DUE", "ENGR-SPLIT LOW YIELD"},
		[4]string{"D", "20", "4 EXPEDITE OVERDUE", "NORMAL"},
	)
	afterLots = lotsTable(
		[4]string{"A", "100", "5 OVERDUE", "NORMAL"},
		[4]string{"B", "10", "ON TIME", "NORMAL"},
		[4]string{"E", "5", "5 OVERDUE", "NORMAL"},
	)
)

func TestCaptureAndAnalyze(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.backend.setTable(config.DefaultLotsURL, beforeLots)

	out, _, err := h.run(t, "", "capture", "before")
	require.NoError(t, err)
	assert.Contains(t, out, "Before shift data captured: 3 critical lots (out of 4 total)")

	h.backend.setTable(config.DefaultLotsURL, afterLots)

	out, _, err = h.run(t, "", "capture", "after")
	require.NoError(t, err)
	assert.Contains(t, out, "After shift data captured: 2 critical lots (out of 3 total)")
	assert.Contains(t, out, "SHIFT REPORT")
	assert.Contains(t, out, "66.7%")

	out, _, err = h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "captured 3 critical lots (out of 4 total)")
	assert.Contains(t, out, "up to date")
}

func TestAnalyze_JSONAndArtifacts(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.backend.setTable(config.DefaultLotsURL, beforeLots)

	_, _, err := h.run(t, "", "capture", "before")
	require.NoError(t, err)

	h.backend.setTable(config.DefaultLotsURL, afterLots)

	_, _, err = h.run(t, "", "--quiet", "capture", "after")
	require.NoError(t, err)

	exportDir := filepath.Join(h.dir, "exports")
	plotPath := filepath.Join(h.dir, "charts", "shift.html")
	metricsPath := filepath.Join(h.dir, "shift.prom")

	out, _, err := h.run(t, "", "analyze", "--format", "json",
		"--export", exportDir, "--plot", plotPath, "--metrics-file", metricsPath)
	require.NoError(t, err)

	var doc struct {
		ProcessedKeys  []string      `json:"processed_keys"`
		InProgressKeys []string      `json:"in_progress_keys"`
		Summary        summary.Table `json:"summary"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []string{"C", "D"}, doc.ProcessedKeys)
	assert.Equal(t, []string{"A"}, doc.InProgressKeys)
	rate, _ := doc.Summary.Value(summary.MetricProcessingRate)
	assert.Equal(t, "66.7%", rate)

	assert.FileExists(t, filepath.Join(exportDir, "processed_lots_"+export.Stamp(testNow)+".csv"))
	assert.FileExists(t, filepath.Join(exportDir, "split_low_yield_"+export.Stamp(testNow)+".csv"))
	assert.FileExists(t, plotPath)

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "shiftreport_")
}

func TestCaptureAfter_RequiresBefore(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	_, _, err := h.run(t, "", "capture", "after")
	assert.True(t, errors.Is(err, ErrBeforeMissing))
}

func TestCapture_InvalidTag(t *testing.T) {
	t.Parallel()

	_, _, err := newHarness(t).run(t, "", "capture", "during")
	require.Error(t, err)
}

func TestCapture_FromCSV(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.backend.openErr = errOffline

	csvPath := filepath.Join(h.dir, "lots.csv")
	content := "LOT NUMBER,QTY,OTD STATUS,CATEGORY\nL1,5,OVERDUE,NORMAL\nL2,3,ON TIME,NORMAL\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o600))

	out, _, err := h.run(t, "", "capture", "before", "--from-csv", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Before shift data captured: 1 critical lots (out of 2 total)")
}

func TestCapture_ConnectivityFailureKeepsSession(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.backend.setTable(config.DefaultLotsURL, beforeLots)

	_, _, err := h.run(t, "", "capture", "before")
	require.NoError(t, err)

	h.backend.openErr = errOffline

	_, _, err = h.run(t, "", "capture", "before")
	assert.True(t, errors.Is(err, errOffline))

	out, _, err := h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "captured 3 critical lots")
}

func TestAnalyze_WithoutSnapshots(t *testing.T) {
	t.Parallel()

	_, _, err := newHarness(t).run(t, "", "analyze")
	assert.True(t, errors.Is(err, ErrSnapshotsMissing))
}

func TestReset(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.backend.setTable(config.DefaultLotsURL, beforeLots)

	_, _, err := h.run(t, "", "capture", "before")
	require.NoError(t, err)

	out, _, err := h.run(t, "", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Analysis reset successfully")

	out, _, err = h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "not captured")
	assert.Contains(t, out, "please capture before shift data first")
}

func TestAttendance_RecordsToSheet(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.backend.setTable(config.DefaultMembersURL, sheets.Table{
		Header: []string{"Name", "Shift"},
		Records: []map[string]string{
			{"Name": "Aisyah", "Shift": "Shift A"},
			{"Name": "Ben", "Shift": "Shift A"},
			{"Name": "Chen", "Shift": "Shift A"},
		},
	})

	out, _, err := h.run(t, "1\n2\n2\nyes\n", "attendance")
	require.NoError(t, err)
	assert.Contains(t, out, "Attendance recorded: 2 present, 1 absent.")

	assert.Equal(t, [][]string{
		{"2026-10-17", "Aisyah", "Shift A", "Present"},
		{"2026-10-17", "Chen", "Shift A", "Present"},
		{"2026-10-17", "Ben", "Shift A", "Absent"},
	}, h.backend.rows(config.DefaultAttendanceURL))
}

func TestAttendance_LedgerWithoutSheets(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.backend.openErr = errOffline

	ledgerPath := filepath.Join(h.dir, "ledger.db")

	out, _, err := h.run(t, "3\n3\ny\n", "attendance", "--ledger", ledgerPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Error loading team members")

	ledger, err := sheets.OpenLedger(ledgerPath)
	require.NoError(t, err)

	t.Cleanup(func() { _ = ledger.Close() })

	rows, err := ledger.Sheet(ledgerAttendance).Rows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"2026-10-17", "Team Member 1", "Shift C", "Present"},
		{"2026-10-17", "Team Member 2", "Shift C", "Present"},
		{"2026-10-17", "Team Member 3", "Shift C", "Present"},
	}, rows)
}

func TestDetape_Ledger(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ledgerPath := filepath.Join(h.dir, "ledger.db")

	_, _, err := h.run(t, "2\nQFN48\nBGA\nyes\n", "detape", "--ledger", ledgerPath)
	require.NoError(t, err)

	ledger, err := sheets.OpenLedger(ledgerPath)
	require.NoError(t, err)

	t.Cleanup(func() { _ = ledger.Close() })

	rows, err := ledger.Sheet(ledgerDetape).Rows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"2026-10-17", "1", "QFN48"},
		{"2026-10-17", "1", "BGA"},
	}, rows)
}

func TestDetape_SheetUnavailable(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.backend.openErr = errOffline

	_, _, err := h.run(t, "1\nQFN48\nyes\n", "detape")
	assert.True(t, errors.Is(err, errOffline))
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, _, err := newHarness(t).run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "shiftreport "))
}

func TestObservabilityConfig_LogFormatIgnoresCase(t *testing.T) {
	t.Parallel()

	app := NewApp()

	for _, format := range []string{"json", "JSON", "Json"} {
		cfg := &config.Config{Logging: config.LoggingConfig{Level: "info", Format: format}}
		assert.True(t, app.observabilityConfig(cfg, observability.ModeCLI).LogJSON, format)
	}

	cfg := &config.Config{Logging: config.LoggingConfig{Level: "info", Format: "text"}}
	assert.False(t, app.observabilityConfig(cfg, observability.ModeCLI).LogJSON)
}
