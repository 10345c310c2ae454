package render

import (
	"errors"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		vars    map[string]string
		want    string
		wantErr bool
	}{
		{
			name: "single variable",
			in:   "Time to take {medication_name} ({time})",
			vars: map[string]string{"medication_name": "Aspirin", "time": "08:00 AM"},
			want: "Time to take Aspirin (08:00 AM)",
		},
		{
			name: "no variables",
			in:   "Medication Reminder",
			vars: nil,
			want: "Medication Reminder",
		},
		{
			name: "repeated variable",
			in:   "{device_name}: {device_name} data synced",
			vars: map[string]string{"device_name": "Fitbit"},
			want: "Fitbit: Fitbit data synced",
		},
		{
			name: "empty value substitutes",
			in:   "Hello {name}",
			vars: map[string]string{"name": ""},
			want: "Hello ",
		},
		{
			name:    "missing variable",
			in:      "Time to take {medication_name}",
			vars:    map[string]string{"time": "08:00 AM"},
			wantErr: true,
		},
		{
			name: "unterminated brace passes through",
			in:   "set {a to {b",
			vars: map[string]string{"a": "x"},
			want: "set {a to {b",
		},
		{
			name: "extra variables ignored",
			in:   "{article_title}",
			vars: map[string]string{"article_title": "Sleep Hygiene", "unused": "y"},
			want: "Sleep Hygiene",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.in, tt.vars)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Render(%q) expected error, got %q", tt.in, got)
				}
				if !errors.Is(err, ErrMissingVariable) {
					t.Fatalf("Render(%q) error = %v, want ErrMissingVariable", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Render(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPairAllOrNothing(t *testing.T) {
	title, msg, err := Pair("{title}", "{missing}", map[string]string{"title": "Sync Complete"})
	if !errors.Is(err, ErrMissingVariable) {
		t.Fatalf("Pair error = %v, want ErrMissingVariable", err)
	}
	if title != "" || msg != "" {
		t.Errorf("Pair returned partial output %q/%q on error", title, msg)
	}
}
