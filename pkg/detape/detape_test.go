package detape_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midanish/PTEO-Shift-Report/pkg/detape"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, detape.Validate(nil))
	require.NoError(t, detape.Validate([]string{"QFN48", "BGA"}))

	err := detape.Validate([]string{"QFN48", " ", "BGA", ""})
	require.Error(t, err)
	assert.True(t, errors.Is(err, detape.ErrEmptyCodes))
	assert.Contains(t, err.Error(), "detape: 2, 4")
}

func TestMissing(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{1, 3}, detape.Missing([]string{"", "A", "\t"}))
	assert.Empty(t, detape.Missing([]string{"A"}))
}

func TestBuildRecords(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 10, 17, 22, 30, 0, 0, time.UTC)

	assert.Equal(t, [][]string{
		{"2026-10-17", "1", "QFN48"},
		{"2026-10-17", "1", "BGA"},
	}, detape.BuildRecords(day, []string{"QFN48", " BGA "}))

	assert.Empty(t, detape.BuildRecords(day, nil))
}
