package core

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		n    int
		in   time.Time
		want time.Time
	}{
		{name: "plain shift", n: 4, in: date(2024, time.January, 1), want: date(2024, time.May, 1)},
		{name: "across year end", n: 12, in: date(2024, time.January, 1), want: date(2025, time.January, 1)},
		{name: "18 months", n: 18, in: date(2024, time.January, 1), want: date(2025, time.July, 1)},
		{name: "day of month preserved", n: 1, in: date(2024, time.March, 15), want: date(2024, time.April, 15)},
		// short target months roll over, they do not clamp
		{name: "Jan 31 rolls into March (leap year)", n: 1, in: date(2024, time.January, 31), want: date(2024, time.March, 2)},
		{name: "Jan 31 rolls into March", n: 1, in: date(2025, time.January, 31), want: date(2025, time.March, 3)},
		{name: "May 31 rolls into July", n: 1, in: date(2024, time.May, 31), want: date(2024, time.July, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddMonths(tt.n, tt.in); !got.Equal(tt.want) {
				t.Errorf("AddMonths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubMonths(t *testing.T) {
	tests := []struct {
		name string
		n    int
		in   time.Time
		want time.Time
	}{
		{name: "plain shift", n: 4, in: date(2024, time.May, 1), want: date(2024, time.January, 1)},
		{name: "across year start", n: 18, in: date(2025, time.July, 1), want: date(2024, time.January, 1)},
		{name: "Mar 31 rolls over Feb", n: 1, in: date(2025, time.March, 31), want: date(2025, time.March, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubMonths(tt.n, tt.in); !got.Equal(tt.want) {
				t.Errorf("SubMonths() = %v, want %v", got, tt.want)
			}
		})
	}
}
