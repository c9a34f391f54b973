package handler

import (
	"strings"
	"testing"
)

type lengthRule struct{}

func (lengthRule) ValidateString(candidate string) bool { return len(candidate) >= 8 }

func TestValidator_PasswordTagUsesRule(t *testing.T) {
	v := NewValidator(lengthRule{})

	if err := v.Validate(&loginRequest{Email: "juan@rodriguez.org", Password: "longenough"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := v.Validate(&loginRequest{Email: "juan@rodriguez.org", Password: "short"})
	if err == nil || !strings.Contains(err.Error(), "password does not meet the complexity requirements") {
		t.Fatalf("expected password error, got %v", err)
	}
}

func TestValidator_PatchSkipsAbsentFields(t *testing.T) {
	v := NewValidator(lengthRule{})

	if err := v.Validate(&patchRequest{}); err != nil {
		t.Fatalf("empty patch must be valid, got %v", err)
	}

	tooLong := strings.Repeat("a", 101)
	err := v.Validate(&patchRequest{Name: &tooLong})
	if err == nil || !strings.Contains(err.Error(), "name must be at most 100 characters") {
		t.Fatalf("expected max length error, got %v", err)
	}
}

func TestValidator_ReportsEveryField(t *testing.T) {
	v := NewValidator(lengthRule{})

	err := v.Validate(&registerRequest{})
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"name is required", "email is required", "password is required", "phones is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}

func TestValidator_RegisterRejectsBlankFields(t *testing.T) {
	v := NewValidator(lengthRule{})

	err := v.Validate(&registerRequest{
		Name:     "   ",
		Email:    "juan@rodriguez.org",
		Password: "longenough",
		Phones:   []phoneRequest{{Number: " ", CityCode: "\t", CountryCode: "  "}},
	})
	if err == nil {
		t.Fatalf("expected blank fields to be rejected")
	}
	for _, want := range []string{
		"name must not be blank",
		"number must not be blank",
		"citycode must not be blank",
		"countrycode must not be blank",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}

	err = v.Validate(&registerRequest{
		Name:     "Juan Rodriguez",
		Email:    "juan@rodriguez.org",
		Password: "longenough",
		Phones:   []phoneRequest{{Number: "1234567", CityCode: "1", CountryCode: "57"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
