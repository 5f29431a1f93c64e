package console

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/midanish/PTEO-Shift-Report/pkg/attendance"
	"github.com/midanish/PTEO-Shift-Report/pkg/sheets"
)

// AttendanceFlow collects the pre-shift attendance and appends it to Records.
type AttendanceFlow struct {
	Shifts   []string
	TeamSize int
	// Roster is optional; without it absentees are typed by name.
	Roster  sheets.Reader
	Records sheets.Appender
	Now     func() time.Time
	Logger  *slog.Logger
}

// AttendanceOutcome describes a finished attendance flow.
type AttendanceOutcome struct {
	Entry    attendance.Entry
	Rows     int
	Recorded bool
}

// Run walks through shift, head count, absentees and confirmation. Nothing
// is appended unless the user confirms.
func (f AttendanceFlow) Run(ctx context.Context, p *Prompter) (AttendanceOutcome, error) {
	f = f.withDefaults()

	now := f.Now()

	p.Section("PTEO ATTENDANCE CHECK-IN")
	p.Printf("Date: %s\n\nSelect shift:\n", now.Format(attendance.DateLayout))

	idx, err := p.Choose(ctx, "shift", f.Shifts)
	if err != nil {
		return AttendanceOutcome{}, err
	}

	shift := f.Shifts[idx]
	roster := f.loadRoster(ctx, p, shift)

	present, err := p.AskInt(ctx,
		fmt.Sprintf("How many team members are present? (0-%d): ", f.TeamSize),
		0, f.TeamSize,
		fmt.Sprintf("Please enter a number between 0 and %d.", f.TeamSize))
	if err != nil {
		return AttendanceOutcome{}, err
	}

	absent, err := f.askAbsentees(ctx, p, roster, f.TeamSize-present)
	if err != nil {
		return AttendanceOutcome{}, err
	}

	entry := attendance.Entry{
		Date:    now,
		Shift:   shift,
		Present: attendance.PresentMembers(roster, absent, present),
		Absent:  absent,
	}

	printAttendanceSummary(p, entry)

	ok, err := p.Confirm(ctx, "Submit attendance? (yes/no): ")
	if err != nil {
		return AttendanceOutcome{}, err
	}

	if !ok {
		p.Warn("Attendance recording cancelled.")

		return AttendanceOutcome{Entry: entry}, nil
	}

	rows := attendance.BuildRecords(entry)

	err = f.Records.AppendRows(ctx, rows)
	if err != nil {
		return AttendanceOutcome{Entry: entry}, fmt.Errorf("record attendance: %w", err)
	}

	f.Logger.InfoContext(ctx, "attendance recorded",
		slog.String("shift", shift),
		slog.Int("present", len(entry.Present)),
		slog.Int("absent", len(entry.Absent)))

	p.Success(fmt.Sprintf("Attendance recorded: %d present, %d absent.", len(entry.Present), len(entry.Absent)))

	return AttendanceOutcome{Entry: entry, Rows: len(rows), Recorded: true}, nil
}

func (f AttendanceFlow) withDefaults() AttendanceFlow {
	if len(f.Shifts) == 0 {
		f.Shifts = attendance.DefaultShifts
	}

	if f.TeamSize <= 0 {
		f.TeamSize = attendance.DefaultTeamSize
	}

	if f.Now == nil {
		f.Now = time.Now
	}

	if f.Logger == nil {
		f.Logger = slog.New(slog.DiscardHandler)
	}

	return f
}

// loadRoster reads the members sheet. A failed read is reported and the flow
// continues with manual name entry.
func (f AttendanceFlow) loadRoster(ctx context.Context, p *Prompter, shift string) []string {
	if f.Roster == nil {
		return nil
	}

	table, err := f.Roster.ReadRecords(ctx)
	if err != nil {
		f.Logger.WarnContext(ctx, "roster unavailable", slog.Any("error", err))
		p.Fail(fmt.Sprintf("Error loading team members: %v", err))

		return nil
	}

	roster := attendance.MembersForShift(table.Records, shift)
	if len(roster) == 0 {
		p.Warn(fmt.Sprintf("No team members found for %s.", shift))

		return nil
	}

	p.Printf("\nTeam members for %s:\n", shift)

	for i, name := range roster {
		p.Printf("  %d. %s\n", i+1, name)
	}

	return roster
}

func (f AttendanceFlow) askAbsentees(ctx context.Context, p *Prompter, roster []string, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}

	if len(roster) < count {
		return askAbsentNames(ctx, p, count)
	}

	prompt := fmt.Sprintf("Enter the number(s) of the %d absent member(s), separated by commas: ", count)

	for {
		input, err := p.Ask(ctx, prompt)
		if err != nil {
			return nil, err
		}

		names, err := attendance.SelectAbsentees(input, roster, count)
		if err == nil {
			return names, nil
		}

		p.Fail(err.Error())
	}
}

func askAbsentNames(ctx context.Context, p *Prompter, count int) ([]string, error) {
	names := make([]string, 0, count)

	for i := 1; i <= count; i++ {
		name, err := p.AskNonEmpty(ctx, fmt.Sprintf("Absent member %d name: ", i), "Name cannot be empty.")
		if err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	return names, nil
}

func printAttendanceSummary(p *Prompter, e attendance.Entry) {
	p.Section("ATTENDANCE SUMMARY")
	p.Printf("Date:    %s\n", e.Date.Format(attendance.DateLayout))
	p.Printf("Shift:   %s\n", e.Shift)
	p.Printf("Present (%d): %s\n", len(e.Present), joinOrNone(e.Present))
	p.Printf("Absent (%d):  %s\n\n", len(e.Absent), joinOrNone(e.Absent))
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "None"
	}

	return strings.Join(names, ", ")
}
