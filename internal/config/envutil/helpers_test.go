package envutil

import (
	"testing"
	"time"
)

func TestGetStringEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue string
		expected     string
	}{
		{"set value", "hello", "fallback", "hello"},
		{"empty value uses default", "", "fallback", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_STRING_VAR", tt.value)
			if got := GetStringEnv("TEST_STRING_VAR", tt.defaultValue); got != tt.expected {
				t.Errorf("GetStringEnv() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGetIntEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue int
		expected     int
	}{
		{"valid integer", "42", 7, 42},
		{"negative integer", "-3", 7, -3},
		{"empty uses default", "", 7, 7},
		{"invalid uses default", "not-a-number", 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT_VAR", tt.value)
			if got := GetIntEnv("TEST_INT_VAR", tt.defaultValue); got != tt.expected {
				t.Errorf("GetIntEnv() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue bool
		expected     bool
	}{
		{"true", "true", false, true},
		{"one", "1", false, true},
		{"TRUE uppercase", "TRUE", false, true},
		{"false", "false", true, false},
		{"zero", "0", true, false},
		{"empty uses default", "", true, true},
		{"invalid is false", "maybe", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL_VAR", tt.value)
			if got := GetBoolEnv("TEST_BOOL_VAR", tt.defaultValue); got != tt.expected {
				t.Errorf("GetBoolEnv() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetDurationEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue time.Duration
		expected     time.Duration
	}{
		{"seconds", "30s", time.Minute, 30 * time.Second},
		{"minutes", "5m", time.Minute, 5 * time.Minute},
		{"empty uses default", "", time.Minute, time.Minute},
		{"invalid uses default", "soon", time.Minute, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION_VAR", tt.value)
			if got := GetDurationEnv("TEST_DURATION_VAR", tt.defaultValue); got != tt.expected {
				t.Errorf("GetDurationEnv() = %v, want %v", got, tt.expected)
			}
		})
	}
}
