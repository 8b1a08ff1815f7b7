package core

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorCodeConfigInvalid       = "PAYBRIDGE_CONFIG_INVALID"
	ErrorCodeProviderUnsupported = "PAYBRIDGE_PROVIDER_UNSUPPORTED"
	ErrorCodeNotFound            = "PAYBRIDGE_NOT_FOUND"
	ErrorCodeBadInput            = "PAYBRIDGE_BAD_INPUT"
	ErrorCodeBackend             = "PAYBRIDGE_BACKEND"
	ErrorCodeRetryExhausted      = "PAYBRIDGE_RETRY_EXHAUSTED"
)

// NewConfigValidationError names the config fields missing or invalid for
// the selected provider.
func NewConfigValidationError(provider Provider, fields ...string) error {
	message := fmt.Sprintf("core: invalid configuration for provider %q", provider)
	if len(fields) > 0 {
		message += ": missing " + strings.Join(fields, ", ")
	}
	return goerrors.New(message, goerrors.CategoryValidation).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorCodeConfigInvalid).
		WithMetadata(map[string]any{
			"provider": string(provider),
			"fields":   fields,
		})
}

func NewUnsupportedProviderError(provider Provider) error {
	return goerrors.New(
		fmt.Sprintf("core: provider %q is reserved and not implemented", provider),
		goerrors.CategoryBadInput,
	).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorCodeProviderUnsupported).
		WithMetadata(map[string]any{"provider": string(provider)})
}

func NewNotFoundError(message string) error {
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(ErrorCodeNotFound)
}

func NewValidationError(message string) error {
	return goerrors.New("core: "+message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorCodeBadInput)
}

// WrapBackendError propagates an engine or remote-client failure without
// reinterpreting it; the cause stays reachable through goerrors unwrapping.
func WrapBackendError(source error, message string) error {
	if source == nil {
		return nil
	}
	return goerrors.Wrap(source, goerrors.CategoryExternal, message).
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorCodeBackend)
}

// NewRetryExhaustedError reports a write abandoned by the retry policy. The
// message names the attempt count and the last underlying cause.
func NewRetryExhaustedError(attempts int, cause error) error {
	causeText := "unknown error"
	if cause != nil {
		causeText = cause.Error()
	}
	return goerrors.Wrap(
		cause,
		goerrors.CategoryOperation,
		fmt.Sprintf("core: write failed after %d attempts: %s", attempts, causeText),
	).
		WithCode(http.StatusConflict).
		WithTextCode(ErrorCodeRetryExhausted).
		WithMetadata(map[string]any{
			"attempts":   attempts,
			"last_error": causeText,
		})
}

func hasTextCode(err error, textCode string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == textCode
}

func IsNotFound(err error) bool {
	return hasTextCode(err, ErrorCodeNotFound)
}

func IsConfigValidation(err error) bool {
	return hasTextCode(err, ErrorCodeConfigInvalid)
}

func IsUnsupportedProvider(err error) bool {
	return hasTextCode(err, ErrorCodeProviderUnsupported)
}

func IsRetryExhausted(err error) bool {
	return hasTextCode(err, ErrorCodeRetryExhausted)
}

func IsBackend(err error) bool {
	return hasTextCode(err, ErrorCodeBackend)
}
