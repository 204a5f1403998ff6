package post

import (
	"testing"
	"time"
)

func TestEditable(t *testing.T) {
	today, err := time.Parse("2006-01-02", "2024-03-15")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{
			"Today's post is editable",
			today,
			true,
		},
		{
			"Two days old is still editable",
			today.AddDate(0, 0, -2),
			true,
		},
		{
			"Three days old is locked",
			today.AddDate(0, 0, -3),
			false,
		},
		{
			"Much older post is locked",
			today.AddDate(0, -2, 0),
			false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := &Post{Date: test.date}
			if got := p.Editable(3, today); got != test.want {
				t.Errorf("Editable() = %v, want %v", got, test.want)
			}
		})
	}
}
