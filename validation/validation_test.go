package validation

import (
	"strings"
	"testing"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("client_id", "client-1")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("client_id", "")
	if !v2.HasErrors() {
		t.Error("expected error for empty required field")
	}

	v3 := New()
	v3.Required("client_id", "   ")
	if !v3.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorMinLength(t *testing.T) {
	v := New()
	v.MinLength("session_security_key", strings.Repeat("a", 64), 64)
	if v.HasErrors() {
		t.Error("expected no error for string meeting min length")
	}

	v2 := New()
	v2.MinLength("session_security_key", "ab", 64)
	if !v2.HasErrors() {
		t.Error("expected error for string below min length")
	}
}

func TestValidatorRange(t *testing.T) {
	v := New()
	v.Range("session_max_age_days", 30, 1, 365)
	if v.HasErrors() {
		t.Error("expected no error for value in range")
	}

	v2 := New()
	v2.Range("session_max_age_days", 0, 1, 365)
	if !v2.HasErrors() {
		t.Error("expected error for value below range")
	}

	v3 := New()
	v3.Range("session_max_age_days", 1000, 1, 365)
	if !v3.HasErrors() {
		t.Error("expected error for value above range")
	}
}

func TestValidatorPattern(t *testing.T) {
	v := New()
	v.Pattern("session_security_key", "0a1b2c", `^[0-9a-f]+$`)
	if v.HasErrors() {
		t.Error("expected no error for matching pattern")
	}

	v2 := New()
	v2.Pattern("session_security_key", "XYZ", `^[0-9a-f]+$`)
	if !v2.HasErrors() {
		t.Error("expected error for non-matching pattern")
	}

	// Empty value should be skipped
	v3 := New()
	v3.Pattern("session_security_key", "", `^[0-9a-f]+$`)
	if v3.HasErrors() {
		t.Error("expected no error for empty value with pattern")
	}
}

func TestValidatorOneOf(t *testing.T) {
	v := New()
	v.OneOf("backend", "cookie", []string{"cookie", "redis"})
	if v.HasErrors() {
		t.Error("expected no error for valid oneOf value")
	}

	v2 := New()
	v2.OneOf("backend", "memcached", []string{"cookie", "redis"})
	if !v2.HasErrors() {
		t.Error("expected error for invalid oneOf value")
	}

	// Empty should be skipped
	v3 := New()
	v3.OneOf("backend", "", []string{"cookie"})
	if v3.HasErrors() {
		t.Error("expected no error for empty oneOf value")
	}
}

func TestValidatorCustom(t *testing.T) {
	v := New()
	v.Custom(true, "issuers", "should pass")
	if v.HasErrors() {
		t.Error("expected no error for true condition")
	}

	v2 := New()
	v2.Custom(false, "issuers", "custom error")
	if !v2.HasErrors() {
		t.Error("expected error for false condition")
	}
	if v2.Errors()[0].Message != "custom error" {
		t.Errorf("expected 'custom error', got %q", v2.Errors()[0].Message)
	}
}

func TestValidatorValidate(t *testing.T) {
	v := New()
	v.Required("client_id", "client-1")
	appErr := v.Validate()
	if appErr != nil {
		t.Error("expected nil for valid input")
	}

	v2 := New()
	v2.Required("client_id", "")
	v2.Required("client_secret", "")
	appErr2 := v2.Validate()
	if appErr2 == nil {
		t.Fatal("expected error")
	}
	if appErr2.Details == nil {
		t.Fatal("expected details in error")
	}
	if !strings.Contains(appErr2.Message, "client_id") || !strings.Contains(appErr2.Message, "client_secret") {
		t.Errorf("expected both fields in message, got %q", appErr2.Message)
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New()
	result := v.Required("prefix", "/auth").Range("session_max_age_days", 30, 1, 365)
	if result != v {
		t.Error("expected chaining to return same validator")
	}
	if v.HasErrors() {
		t.Error("expected no errors for valid chained validation")
	}
}

func TestStructValidateValid(t *testing.T) {
	type Settings struct {
		BaseURL string `mapstructure:"base_url" validate:"required,url"`
		Prefix  string `mapstructure:"prefix" validate:"required"`
	}

	err := Validate(Settings{BaseURL: "https://app.example.com", Prefix: "/auth"})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	type Settings struct {
		BaseURL string `mapstructure:"base_url" validate:"required,url"`
		Prefix  string `mapstructure:"prefix" validate:"required"`
	}

	err := Validate(Settings{BaseURL: "not a url"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "prefix") {
		t.Errorf("expected error to mention 'prefix', got %q", errStr)
	}
}

func TestStructValidateSecurityKey(t *testing.T) {
	type Settings struct {
		Key string `mapstructure:"session_security_key" validate:"required,securitykey"`
	}

	valid := strings.Repeat("0f", 32)
	if err := Validate(Settings{Key: valid}); err != nil {
		t.Errorf("expected valid key to pass, got %v", err)
	}

	for _, key := range []string{"", "abcd", strings.Repeat("zz", 32), strings.Repeat("0f", 33)} {
		if err := Validate(Settings{Key: key}); err == nil {
			t.Errorf("key %q should be rejected", key)
		}
	}
}

func TestStructValidateOneOf(t *testing.T) {
	type Settings struct {
		Backend string `mapstructure:"backend" validate:"required,oneof=cookie redis"`
	}

	if err := Validate(Settings{Backend: "redis"}); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	if err := Validate(Settings{Backend: "memcached"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
