package console

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/midanish/PTEO-Shift-Report/pkg/detape"
	"github.com/midanish/PTEO-Shift-Report/pkg/sheets"
)

// DetapeFlow collects the day's detapes and appends them to Records.
type DetapeFlow struct {
	Records sheets.Appender
	Now     func() time.Time
	Logger  *slog.Logger
}

// DetapeOutcome describes a finished detape flow.
type DetapeOutcome struct {
	Codes    []string
	Recorded bool
}

// Run asks for the detape count and one package code per detape. Zero
// detapes records nothing.
func (f DetapeFlow) Run(ctx context.Context, p *Prompter) (DetapeOutcome, error) {
	if f.Now == nil {
		f.Now = time.Now
	}

	if f.Logger == nil {
		f.Logger = slog.New(slog.DiscardHandler)
	}

	now := f.Now()

	p.Section("DETAPE MONITORING")
	p.Printf("Date: %s\n", now.Format(detape.DateLayout))

	n, err := p.AskInt(ctx, "How many detapes were done? ", 0, detape.MaxCount,
		fmt.Sprintf("Please enter a number between 0 and %d.", detape.MaxCount))
	if err != nil {
		return DetapeOutcome{}, err
	}

	if n == 0 {
		p.Warn("No detapes recorded (quantity is 0).")

		return DetapeOutcome{}, nil
	}

	codes, err := askCodes(ctx, p, n)
	if err != nil {
		return DetapeOutcome{Codes: codes}, err
	}

	ok, err := p.Confirm(ctx, fmt.Sprintf("Record %d detape(s)? (yes/no): ", n))
	if err != nil {
		return DetapeOutcome{Codes: codes}, err
	}

	if !ok {
		p.Warn("Detape recording cancelled.")

		return DetapeOutcome{Codes: codes}, nil
	}

	err = f.Records.AppendRows(ctx, detape.BuildRecords(now, codes))
	if err != nil {
		return DetapeOutcome{Codes: codes}, fmt.Errorf("record detapes: %w", err)
	}

	f.Logger.InfoContext(ctx, "detapes recorded", slog.Int("count", n))
	p.Success(fmt.Sprintf("Recorded %d detape(s).", n))

	return DetapeOutcome{Codes: codes, Recorded: true}, nil
}

// askCodes reads one code per detape, then asks again for the blank ones
// until every code is filled.
func askCodes(ctx context.Context, p *Prompter, n int) ([]string, error) {
	var codes []string

	for i := 1; i <= n; i++ {
		code, err := p.Ask(ctx, fmt.Sprintf("Package code for detape %d: ", i))
		if err != nil {
			return codes, err
		}

		codes = append(codes, code)
	}

	for err := detape.Validate(codes); err != nil; err = detape.Validate(codes) {
		p.Fail(err.Error())

		for _, pos := range detape.Missing(codes) {
			code, askErr := p.Ask(ctx, fmt.Sprintf("Package code for detape %d: ", pos))
			if askErr != nil {
				return codes, askErr
			}

			codes[pos-1] = code
		}
	}

	return codes, nil
}
