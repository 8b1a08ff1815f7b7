package core

import (
	"errors"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestErrorTaxonomy_TextCodesAndPredicates(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		predicate func(error) bool
		textCode  string
	}{
		{"config", NewConfigValidationError(ProviderSQLite, "sqlite.file_path"), IsConfigValidation, ErrorCodeConfigInvalid},
		{"unsupported", NewUnsupportedProviderError(ProviderPostgres), IsUnsupportedProvider, ErrorCodeProviderUnsupported},
		{"not found", NewNotFoundError("core: user not found"), IsNotFound, ErrorCodeNotFound},
		{"backend", WrapBackendError(errors.New("disk I/O error"), "core: select users"), IsBackend, ErrorCodeBackend},
		{"retry", NewRetryExhaustedError(3, errors.New("foreign key constraint")), IsRetryExhausted, ErrorCodeRetryExhausted},
	}

	for _, tc := range cases {
		if !tc.predicate(tc.err) {
			t.Fatalf("%s: predicate rejected %v", tc.name, tc.err)
		}
		var richErr *goerrors.Error
		if !goerrors.As(tc.err, &richErr) {
			t.Fatalf("%s: expected goerrors envelope", tc.name)
		}
		if richErr.TextCode != tc.textCode {
			t.Fatalf("%s: expected text code %q, got %q", tc.name, tc.textCode, richErr.TextCode)
		}
	}
}

func TestNewConfigValidationError_NamesMissingFields(t *testing.T) {
	err := NewConfigValidationError(ProviderSupabase, "supabase.url", "supabase.anon_key")
	if !strings.Contains(err.Error(), "supabase.url") || !strings.Contains(err.Error(), "supabase.anon_key") {
		t.Fatalf("expected missing fields in message, got %q", err.Error())
	}
}

func TestNewRetryExhaustedError_CarriesAttemptsAndCause(t *testing.T) {
	cause := errors.New("foreign key constraint")
	err := NewRetryExhaustedError(3, cause)
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("expected attempt count in message, got %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to remain reachable")
	}
}

func TestWrapBackendError_NilSource(t *testing.T) {
	if err := WrapBackendError(nil, "core: noop"); err != nil {
		t.Fatalf("expected nil for nil source, got %v", err)
	}
}
