// File: level_test.go
// Title: Log Level Tests
// Description: Tests for level parsing, naming and filtering.
// Author: anemortalkid
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

package log

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"DEBUG", LevelDebug, false},
		{" info ", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"err", LevelError, false},
		{"off", LevelOff, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelShouldLog(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		min   Level
		want  bool
	}{
		{"above minimum", LevelError, LevelInfo, true},
		{"equal to minimum", LevelInfo, LevelInfo, true},
		{"below minimum", LevelDebug, LevelInfo, false},
		{"minimum off", LevelError, LevelOff, false},
		{"off never logs", LevelOff, LevelTrace, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.ShouldLog(tt.min); got != tt.want {
				t.Errorf("%v.ShouldLog(%v) = %v, want %v", tt.level, tt.min, got, tt.want)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	if LevelWarn.String() != "warn" {
		t.Errorf("LevelWarn.String() = %q", LevelWarn.String())
	}
	if LevelWarn.ShortString() != "WRN" {
		t.Errorf("LevelWarn.ShortString() = %q", LevelWarn.ShortString())
	}
	if Level(42).String() != "unknown" {
		t.Errorf("Level(42).String() = %q", Level(42).String())
	}
}
