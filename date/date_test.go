package date

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	// Usually time.Time are not comparable (there is a pointer for the timezone), this
	// checks that the property remains true for the canonical form.
	assert.Equal(t, d1.time(), d2.time())
	assert.Equal(t, d1, d2)
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-07-01", want: New(2025, time.July, 1)},
		{in: "2025-7-1", want: New(2025, time.July, 1)},
		{in: "2025-07-01T15:04:05Z", want: New(2025, time.July, 1)},
		{in: "01/07/2025", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDaysSince(t *testing.T) {
	day1 := New(2025, time.January, 1)
	assert.Equal(t, 4, day1.Add(4).DaysSince(day1))
	assert.Equal(t, -3, day1.Add(-3).DaysSince(day1))
	// across a month boundary
	assert.Equal(t, 31, New(2025, time.February, 1).DaysSince(day1))
}

func TestDateJSON(t *testing.T) {
	var v struct {
		On   Date `json:"on"`
		Skip Date `json:"skip"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"on":"2025-3-9","skip":""}`), &v))
	assert.Equal(t, New(2025, time.March, 9), v.On)
	assert.True(t, v.Skip.IsZero())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"on":"2025-03-09","skip":""}`, string(out))
}
