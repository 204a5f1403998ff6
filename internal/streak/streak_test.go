package streak

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// consecutive returns n consecutive days ending at end.
func consecutive(end time.Time, n int) []time.Time {
	dates := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		dates = append(dates, end.AddDate(0, 0, -i))
	}
	return dates
}

func TestCalculate(t *testing.T) {
	today := day("2024-03-15")

	tests := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{
			"No posts",
			nil,
			0,
		},
		{
			"Single post today",
			[]time.Time{today},
			1,
		},
		{
			"Single post yesterday counts via grace day",
			[]time.Time{today.AddDate(0, 0, -1)},
			2,
		},
		{
			"Single post two days ago is broken",
			[]time.Time{today.AddDate(0, 0, -2)},
			0,
		},
		{
			"Five days through today",
			consecutive(today, 5),
			5,
		},
		{
			"Five days through yesterday same as posting today",
			consecutive(today.AddDate(0, 0, -1), 4),
			5,
		},
		{
			"Gap before yesterday stops the walk",
			[]time.Time{today, today.AddDate(0, 0, -2), today.AddDate(0, 0, -3)},
			1,
		},
		{
			"Old streak long gone",
			consecutive(today.AddDate(0, 0, -10), 30),
			0,
		},
		{
			"Scattered posts with run ending yesterday",
			[]time.Time{
				today.AddDate(0, 0, -1),
				today.AddDate(0, 0, -2),
				today.AddDate(0, 0, -5),
				today.AddDate(0, 0, -9),
			},
			3,
		},
		{
			"Unordered input",
			[]time.Time{today.AddDate(0, 0, -1), today, today.AddDate(0, 0, -2)},
			3,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Calculate(test.dates, today)
			if got != test.want {
				t.Errorf("Calculate() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestCalculateDeterministic(t *testing.T) {
	today := day("2024-03-15")
	dates := consecutive(today, 7)

	first := Calculate(dates, today)
	for i := 0; i < 10; i++ {
		if got := Calculate(dates, today); got != first {
			t.Fatalf("Calculate() not deterministic: got %d, previously %d", got, first)
		}
	}
}

func TestCalculateKPlusOne(t *testing.T) {
	today := day("2024-06-01")

	for k := 0; k < 20; k++ {
		dates := consecutive(today, k+1)
		if got := Calculate(dates, today); got != k+1 {
			t.Errorf("posted (today-%d)..today: Calculate() = %d, want %d", k, got, k+1)
		}
	}
}

func TestCalculateGraceDay(t *testing.T) {
	today := day("2024-06-01")
	yesterday := today.AddDate(0, 0, -1)

	throughYesterday := consecutive(yesterday, 6)
	withToday := append(append([]time.Time{}, throughYesterday...), today)

	if got, want := Calculate(throughYesterday, today), Calculate(withToday, today); got != want {
		t.Errorf("grace day: Calculate() = %d without today's post, %d with it", got, want)
	}

	// Missing yesterday as well resets the streak.
	throughTwoDaysAgo := consecutive(today.AddDate(0, 0, -2), 6)
	if got := Calculate(throughTwoDaysAgo, today); got != 0 {
		t.Errorf("two missed days: Calculate() = %d, want 0", got)
	}
}
