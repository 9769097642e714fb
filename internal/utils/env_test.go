package utils

import "testing"

func TestSafeEnv(t *testing.T) {
	t.Setenv("CLASSXP_TEST_KEY", "value")
	if got := SafeEnv("CLASSXP_TEST_KEY", "fallback"); got != "value" {
		t.Fatalf("SafeEnv=%q, want value", got)
	}
	if got := SafeEnv("CLASSXP_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("SafeEnv=%q, want fallback", got)
	}
}

func TestSafeEnvBool(t *testing.T) {
	t.Setenv("CLASSXP_TEST_BOOL", "true")
	if !SafeEnvBool("CLASSXP_TEST_BOOL", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("CLASSXP_TEST_BOOL", "not-a-bool")
	if !SafeEnvBool("CLASSXP_TEST_BOOL", true) {
		t.Fatalf("malformed value should fall back")
	}
	if SafeEnvBool("CLASSXP_TEST_BOOL_MISSING", false) {
		t.Fatalf("missing value should fall back")
	}
}
