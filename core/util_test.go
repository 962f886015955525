package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCleanStringPtr(t *testing.T) {
	assert.Nil(t, CleanStringPtr(nil))
	assert.Nil(t, CleanStringPtr(StringPtr("   ")))
	assert.Equal(t, "awa@center.cd", *CleanStringPtr(StringPtr(" Awa@Center.cd "), true))
}

func TestNow(t *testing.T) {
	assert.Equal(t, time.UTC, Now().Location())
	moscow := time.FixedZone("MSK", 3*60*60)
	assert.Equal(t, "2024-09-01 21:00:00", FormatTimestamp(time.Date(2024, 9, 2, 0, 0, 0, 0, moscow)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Иван", Truncate("Иванов", 4))
	assert.Equal(t, "Awa", Truncate("Awa", 10))
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, UniqueIDs([]int64{3, 1, 3, 2, 1}))
	assert.Equal(t, []int64{}, UniqueIDs(nil))
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOk bool
	}{
		{in: "09:30", want: "09:30:00", wantOk: true},
		{in: "09:30:15", want: "09:30:15", wantOk: true},
		{in: "9h30"},
		{in: "25:00"},
		{in: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseClock(tt.in)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "9h30", NormalizeClock("9h30"))
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2024-02-27", 3)
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-01", got)

	_, err = AddDays("27/02/2024", 3)
	assert.Error(t, err)
}
