package security

import (
	"errors"
	"strings"
	"testing"
)

func TestMinLengthRule(t *testing.T) {
	rule := MinLengthRule(8)

	if err := rule.Validate("1234567"); err == nil {
		t.Fatal("expected error for short password")
	}
	if err := rule.Validate("12345678"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// Length is counted in runes, not bytes.
	if err := rule.Validate("пароль78"); err != nil {
		t.Fatalf("expected multibyte password to pass, got %v", err)
	}
}

func TestRequirePasswordStrengthRule(t *testing.T) {
	rule := RequirePasswordStrengthRule(3)

	if err := rule.Validate("password"); err == nil {
		t.Fatal("expected dictionary password to be rejected")
	}
	if err := rule.Validate("correct horse battery staple"); err != nil {
		t.Fatalf("expected passphrase to pass, got %v", err)
	}
}

func TestViolationsCollectsAllFailures(t *testing.T) {
	validator := NewPasswordValidator(MinLengthRule(12), RequirePasswordStrengthRule(3))

	violations := validator.Violations("abc")
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %v", violations)
	}
	if !strings.Contains(violations[0], "at least 12 characters") {
		t.Errorf("unexpected violation message: %q", violations[0])
	}
}

func TestDefaultPasswordValidatorSkipsStrengthWhenDisabled(t *testing.T) {
	validator := DefaultPasswordValidator(8, 0)

	if violations := validator.Violations("password"); len(violations) != 0 {
		t.Fatalf("expected no violations with strength disabled, got %v", violations)
	}
}

func TestValidateReturnsFirstViolation(t *testing.T) {
	validator := DefaultPasswordValidator(8, 0)

	err := validator.Validate("short")
	if err == nil {
		t.Fatal("expected error")
	}
	var policyErr *PasswordValidationError
	if !errors.As(err, &policyErr) || policyErr.Code != "min_length" {
		t.Fatalf("expected min_length violation, got %v", err)
	}
}
