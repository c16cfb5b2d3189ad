package timeslot

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Schedule
	}{
		{
			name: "single period",
			in:   "화4",
			want: Schedule{Slots: []Slot{{Day: Tuesday, Start: 4, End: 4}}},
		},
		{
			name: "range and single",
			in:   "월1~3,수4",
			want: Schedule{Slots: []Slot{
				{Day: Monday, Start: 1, End: 3},
				{Day: Wednesday, Start: 4, End: 4},
			}},
		},
		{
			name: "spaces tolerated",
			in:   " 목 10~12 , 금16 ",
			want: Schedule{Slots: []Slot{
				{Day: Thursday, Start: 10, End: 12},
				{Day: Friday, Start: 16, End: 16},
			}},
		},
		{name: "empty", in: "", want: Schedule{OffGrid: true}},
		{name: "sunday", in: "일1~8", want: Schedule{OffGrid: true}},
		{name: "sunday mixed", in: "월1,일2", want: Schedule{OffGrid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.in, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"토1", "월0", "월17", "월3~1", "월a", "월1~", "1~3", "월1,,화2"} {
		_, err := Parse(in)
		if !errors.Is(err, apperrors.ErrInvalidTimeSlot) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidTimeSlot", in, err)
		}
	}
}

func TestSchedule_MaxPeriod(t *testing.T) {
	s, err := Parse("월1~3,수9,금2~5")
	if err != nil {
		t.Fatal(err)
	}
	if got := s.MaxPeriod(); got != 9 {
		t.Errorf("MaxPeriod() = %d, want 9", got)
	}
	if got := (Schedule{OffGrid: true}).MaxPeriod(); got != 0 {
		t.Errorf("off grid MaxPeriod() = %d, want 0", got)
	}
}

func TestSlot_String(t *testing.T) {
	if got := (Slot{Day: Monday, Start: 1, End: 3}).String(); got != "월1~3" {
		t.Errorf("got %q", got)
	}
	if got := (Slot{Day: Friday, Start: 7, End: 7}).String(); got != "금7" {
		t.Errorf("got %q", got)
	}
	if got := (Slot{Day: Monday, Start: 2, End: 4}).Span(); got != 3 {
		t.Errorf("Span() = %d", got)
	}
}
