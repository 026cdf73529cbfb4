package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPreviousRollsOverYear(t *testing.T) {
	assert.Equal(t, New(2023, 12), New(2024, 1).Previous())
	assert.Equal(t, New(2024, 4), New(2024, 5).Previous())
}

func TestIndexAndAddMonths(t *testing.T) {
	assert.Equal(t, New(2024, 1).Index()+1, New(2024, 2).Index())
	assert.Equal(t, New(2024, 12).Index()+1, New(2025, 1).Index())
	assert.Equal(t, New(2025, 2), New(2024, 11).AddMonths(3))
	assert.Equal(t, New(2023, 12), New(2024, 1).AddMonths(-1))
}

func TestValid(t *testing.T) {
	assert.True(t, New(2024, 12).Valid())
	assert.False(t, New(2024, 0).Valid())
	assert.False(t, New(2024, 13).Valid())
	assert.False(t, New(0, 5).Valid())
}

func TestDays(t *testing.T) {
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), New(2024, 2).LastDay())
	assert.Equal(t, "2024-02", Of(time.Date(2024, 2, 10, 23, 0, 0, 0, time.UTC)).String())
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-15")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2024-01-15T23:30:00+07:00")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("15/01/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)

	blank := " "
	none, err := ParseOptionalDate(&blank)
	assert.NoError(t, err)
	assert.Nil(t, none)
}
