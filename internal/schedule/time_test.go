package schedule

import (
	"errors"
	"slices"
	"testing"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "midnight", input: "00:00", want: 0},
		{name: "7am", input: "07:00", want: 420},
		{name: "noon", input: "12:00", want: 720},
		{name: "8pm", input: "20:00", want: 1200},
		{name: "11:59pm", input: "23:59", want: 1439},
		{name: "with minutes", input: "08:30", want: 510},
		{name: "single digit hour", input: "7:05", want: 425},
		{name: "empty", input: "", wantErr: true},
		{name: "no colon", input: "0800", wantErr: true},
		{name: "letters", input: "ab:cd", wantErr: true},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "10:60", wantErr: true},
		{name: "negative", input: "-1:00", wantErr: true},
		{name: "extra part", input: "10:00:00", wantErr: true},
		{name: "plus signs", input: "+8:+05", wantErr: true},
		{name: "negative zero hour", input: "-0:30", wantErr: true},
		{name: "plus minute", input: "08:+5", wantErr: true},
		{name: "single digit minute", input: "08:5", wantErr: true},
		{name: "three digit hour", input: "008:00", wantErr: true},
		{name: "inner space", input: "8: 05", wantErr: true},
		{name: "no hour", input: ":30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMinutes(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimeFormat) {
					t.Fatalf("ToMinutes(%q) error = %v, want ErrInvalidTimeFormat", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToMinutes(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ToMinutes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMinutesToTime(t *testing.T) {
	tests := []struct {
		name  string
		input int
		want  string
	}{
		{name: "midnight", input: 0, want: "00:00"},
		{name: "7am", input: 420, want: "07:00"},
		{name: "with minutes", input: 510, want: "08:30"},
		{name: "negative clamps to zero", input: -10, want: "00:00"},
		{name: "over 24h clamps", input: 1500, want: "23:59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinutesToTime(tt.input); got != tt.want {
				t.Errorf("MinutesToTime(%d) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name         string
		startA, endA string
		startB, endB string
		want         bool
		wantMinutes  int
	}{
		{name: "touching end to start", startA: "07:00", endA: "08:00", startB: "08:00", endB: "09:00", want: false},
		{name: "touching start to end", startA: "08:00", endA: "09:00", startB: "07:00", endB: "08:00", want: false},
		{name: "partial", startA: "08:00", endA: "09:00", startB: "08:30", endB: "09:30", want: true, wantMinutes: 30},
		{name: "contained", startA: "07:00", endA: "12:00", startB: "09:00", endB: "10:00", want: true, wantMinutes: 60},
		{name: "identical", startA: "08:00", endA: "09:00", startB: "08:00", endB: "09:00", want: true, wantMinutes: 60},
		{name: "disjoint", startA: "07:00", endA: "08:00", startB: "15:00", endB: "16:00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sA, eA := mustMinutes(t, tt.startA), mustMinutes(t, tt.endA)
			sB, eB := mustMinutes(t, tt.startB), mustMinutes(t, tt.endB)

			if got := Overlaps(sA, eA, sB, eB); got != tt.want {
				t.Errorf("Overlaps(%s-%s, %s-%s) = %v, want %v", tt.startA, tt.endA, tt.startB, tt.endB, got, tt.want)
			}
			if got := Overlaps(sB, eB, sA, eA); got != tt.want {
				t.Errorf("Overlaps is not symmetric for %s-%s and %s-%s", tt.startA, tt.endA, tt.startB, tt.endB)
			}
			if got := OverlapMinutes(sA, eA, sB, eB); got != tt.wantMinutes {
				t.Errorf("OverlapMinutes = %d, want %d", got, tt.wantMinutes)
			}
		})
	}
}

func TestOverlapsSymmetryExhaustive(t *testing.T) {
	marks := DefaultMarks()
	for i := range marks {
		for j := i + 1; j < len(marks); j++ {
			for k := range marks {
				for l := k + 1; l < len(marks); l++ {
					a := Overlaps(i, j, k, l)
					b := Overlaps(k, l, i, j)
					if a != b {
						t.Fatalf("Overlaps(%d,%d,%d,%d)=%v but swapped=%v", i, j, k, l, a, b)
					}
				}
			}
		}
	}
}

func TestTimeLadder(t *testing.T) {
	marks := DefaultMarks()
	if len(marks) != 14 {
		t.Fatalf("expected 14 marks, got %d", len(marks))
	}
	if marks[0] != "07:00" || marks[13] != "20:00" {
		t.Errorf("expected 07:00..20:00, got %s..%s", marks[0], marks[13])
	}

	half, err := TimeLadder("08:00", "10:00", 30)
	if err != nil {
		t.Fatalf("TimeLadder failed: %v", err)
	}
	want := []string{"08:00", "08:30", "09:00", "09:30", "10:00"}
	if !slices.Equal(half, want) {
		t.Errorf("TimeLadder = %v, want %v", half, want)
	}

	if _, err := TimeLadder("10:00", "08:00", 60); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval for reversed ladder, got %v", err)
	}
	if _, err := TimeLadder("08:00", "10:00", 0); err == nil {
		t.Error("expected error for zero step")
	}
	if _, err := TimeLadder("8am", "10:00", 60); !errors.Is(err, ErrInvalidTimeFormat) {
		t.Errorf("expected ErrInvalidTimeFormat, got %v", err)
	}
}

func mustMinutes(t *testing.T, label string) int {
	t.Helper()
	m, err := ToMinutes(label)
	if err != nil {
		t.Fatalf("ToMinutes(%q): %v", label, err)
	}
	return m
}
