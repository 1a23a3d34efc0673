package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    Clock
		wantErr bool
	}{
		{"09:00", 9 * 60, false},
		{"16:30", 16*60 + 30, false},
		{"00:00", 0, false},
		{"24:00", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClock_RoundTrip(t *testing.T) {
	c, err := ParseClock("10:30")
	assert.NoError(t, err)
	assert.Equal(t, "10:30", c.String())

	data, err := json.Marshal(c)
	assert.NoError(t, err)
	assert.Equal(t, `"10:30"`, string(data))

	var back Clock
	assert.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, c, back)
}

func TestClock_Add(t *testing.T) {
	c, _ := ParseClock("16:30")
	end := c.Add(90 * time.Minute)
	assert.Equal(t, "18:00", end.String())
	assert.True(t, end.Valid())

	past := c.Add(8 * time.Hour)
	assert.False(t, past.Valid())
}

func TestWorkerProfile_Validate(t *testing.T) {
	profile := WorkerProfile{
		Username:   "asha",
		DailyStart: 9 * 60,
		DailyEnd:   18 * 60,
	}
	assert.NoError(t, profile.Validate())

	inverted := profile
	inverted.DailyStart, inverted.DailyEnd = inverted.DailyEnd, inverted.DailyStart
	assert.Error(t, inverted.Validate())

	empty := profile
	empty.DailyEnd = empty.DailyStart
	assert.Error(t, empty.Validate())

	anonymous := profile
	anonymous.Username = "  "
	assert.Error(t, anonymous.Validate())
}

func TestBooking_JSONSchema(t *testing.T) {
	b := Booking{
		ID:        "bk_20260115093000_abcd1234",
		Customer:  "ravi",
		Worker:    "asha",
		Date:      "2026-01-15",
		Start:     10 * 60,
		End:       11 * 60,
		CreatedAt: time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
		Status:    StatusConfirmed,
	}

	data, err := json.Marshal(b)
	assert.NoError(t, err)

	var raw map[string]any
	assert.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "ravi", raw["user"])
	assert.Equal(t, "asha", raw["worker"])
	assert.Equal(t, "10:00", raw["start"])
	assert.Equal(t, "11:00", raw["end"])
	assert.Equal(t, "confirmed", raw["status"])
}

func TestSameHandle(t *testing.T) {
	assert.True(t, SameHandle("Asha", "asha"))
	assert.True(t, SameHandle("ASHA", "asha"))
	assert.False(t, SameHandle("asha", "ravi"))
}
