package date

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Appending two values in reverse order and checking that everything is
	// as expected at every step of the way.
	assert.Equal(t, 0, h.Len())

	h.Append(d1, v1)
	assert.Equal(t, 1, h.Len())

	h.Append(d2, v2)
	assert.Equal(t, 2, h.Len())

	assert.Equal(t, []Date{d2, d1}, h.days)
	assert.Equal(t, []string{v2, v1}, h.values)
}

func TestAppendOverwritesSameDay(t *testing.T) {
	h := new(History[float64])
	day := New(2025, 1, 1)
	h.Append(day, 1).Append(day, 2).Append(day.Add(1), 3).Append(day, 4)

	assert.Equal(t, []Date{day, day.Add(1)}, h.days)
	assert.Equal(t, []float64{4, 3}, h.values)
}

func TestValueAsOf(t *testing.T) {
	h := new(History[float64])
	day := New(2025, 1, 10)
	h.Append(day, 100).Append(day.Add(5), 120)

	testCases := []struct {
		name   string
		on     Date
		want   float64
		wantOK bool
	}{
		{name: "before first", on: day.Add(-1), want: 0, wantOK: false},
		{name: "on first", on: day, want: 100, wantOK: true},
		{name: "between", on: day.Add(3), want: 100, wantOK: true},
		{name: "on second", on: day.Add(5), want: 120, wantOK: true},
		{name: "after last", on: day.Add(50), want: 120, wantOK: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := h.ValueAsOf(tc.on)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
