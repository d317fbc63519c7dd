package config

import (
	"testing"
	"time"
)

func TestGetString(t *testing.T) {
	t.Setenv("TEST_STRING_KEY", "hello")
	if got := GetString("TEST_STRING_KEY", "fallback"); got != "hello" {
		t.Errorf("GetString() = %q, want hello", got)
	}
	if got := GetString("TEST_STRING_MISSING", "fallback"); got != "fallback" {
		t.Errorf("GetString() = %q, want fallback", got)
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("TEST_INT_KEY", "42")
	t.Setenv("TEST_INT_BAD", "forty-two")

	if got := GetInt("TEST_INT_KEY", 7); got != 42 {
		t.Errorf("GetInt() = %d, want 42", got)
	}
	if got := GetInt("TEST_INT_BAD", 7); got != 7 {
		t.Errorf("GetInt() = %d, want fallback 7 for unparseable value", got)
	}
	if got := GetInt("TEST_INT_MISSING", 7); got != 7 {
		t.Errorf("GetInt() = %d, want fallback 7 for missing key", got)
	}
}

func TestGetBool(t *testing.T) {
	t.Setenv("TEST_BOOL_KEY", "true")
	t.Setenv("TEST_BOOL_BAD", "yep")

	if !GetBool("TEST_BOOL_KEY", false) {
		t.Error("GetBool() = false, want true")
	}
	if GetBool("TEST_BOOL_BAD", false) {
		t.Error("GetBool() = true, want fallback false for unparseable value")
	}
	if !GetBool("TEST_BOOL_MISSING", true) {
		t.Error("GetBool() = false, want fallback true for missing key")
	}
}

func TestGetDuration(t *testing.T) {
	t.Setenv("TEST_DUR_KEY", "90s")
	t.Setenv("TEST_DUR_BAD", "soon")

	if got := GetDuration("TEST_DUR_KEY", time.Second); got != 90*time.Second {
		t.Errorf("GetDuration() = %v, want 90s", got)
	}
	if got := GetDuration("TEST_DUR_BAD", time.Second); got != time.Second {
		t.Errorf("GetDuration() = %v, want fallback 1s for unparseable value", got)
	}
}
