package dateutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{format: "YYYY-MM-DD", want: "2006-01-02"},
		{format: "MMMM D, YYYY", want: "January 2, 2006"},
		{format: "MMM YY", want: "Jan 06"},
		{format: "D/M", want: "2/1"},
		{format: "[Edition of] YYYY", want: "Edition of 2006"},
		{format: "[YYYY]", want: "YYYY"},
		{format: "", wantErr: true},
		{format: "[open YYYY", wantErr: true},
		{format: strings.Repeat("Y", MaxLayoutLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			got, err := Layout(tt.format)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDateFormat) {
					t.Errorf("Layout(%q) error = %v, want ErrInvalidDateFormat", tt.format, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Layout(%q) error = %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("Layout(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		value   string
		want    string
		wantErr bool
	}{
		{value: "", want: ""},
		{value: "Spring 2025", want: "Spring 2025"},
		{value: "2024-01-15", want: "2024-01-15"},
		{value: "today", want: "2026-03-07"},
		{value: "TODAY", want: "2026-03-07"},
		{value: "today:long", want: "March 7, 2026"},
		{value: "today:Month", want: "March 2026"},
		{value: "today:year", want: "2026"},
		{value: "today:DD.MM.YYYY", want: "07.03.2026"},
		{value: "today:", wantErr: true},
		{value: "today:[bad", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(tt.value, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
