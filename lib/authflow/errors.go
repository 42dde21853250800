// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package authflow

import (
	"errors"
	"fmt"
)

// Kind classifies authentication failures so that callers can choose a
// remediation (run setup, retry the code, check the network) without
// parsing error message text.
type Kind string

const (
	// KindCredentialsNotFound indicates no secret is on file for the
	// account. The remedy is running setup; retrying will not help.
	KindCredentialsNotFound Kind = "credentials_not_found"

	// KindAuthenticationRejected indicates the service refused the
	// credentials or the two-factor code. The message carries the
	// service's detail text verbatim. The caller may offer re-entry;
	// the flow never loops on its own.
	KindAuthenticationRejected Kind = "authentication_rejected"

	// KindTwoFactorRequired indicates the service demanded a code and
	// the caller supplied no provider. This is the expected outcome for
	// non-interactive callers, not a malfunction.
	KindTwoFactorRequired Kind = "two_factor_required"

	// KindStore indicates the secure storage layer failed. The chain
	// carries the *keystore.StoreError with the numeric status code.
	KindStore Kind = "store"

	// KindBiometricDenied indicates verification was presented and
	// explicitly failed, timed out, or was dismissed. No secret was
	// released.
	KindBiometricDenied Kind = "biometric_denied"

	// KindBiometricUnavailable indicates the platform lacks the
	// verification capability. Credential retrieval itself proceeds
	// ungated when the gate is unavailable, so this kind only surfaces
	// from operations that demand verification outright.
	KindBiometricUnavailable Kind = "biometric_unavailable"

	// KindNetwork indicates the transport failed (DNS, TLS, refused
	// connection, timeout) before the service could answer. Never
	// retried by the flow; always surfaced.
	KindNetwork Kind = "network"

	// KindInternal indicates an unanticipated failure. The original
	// error is wrapped, never discarded.
	KindInternal Kind = "internal"
)

// FlowError is a categorized authentication error. Callers test the
// kind with [KindOf] or reach structured causes through errors.As:
//
//	var flowErr *authflow.FlowError
//	if errors.As(err, &flowErr) && flowErr.Kind == authflow.KindTwoFactorRequired { ... }
//
// FlowError wraps an inner error, preserving the full chain for
// debugging while adding the kind. Use the kind-specific constructors
// rather than constructing FlowError directly.
type FlowError struct {
	// Kind classifies the failure for programmatic handling.
	Kind Kind

	// Err is the underlying error with the human-readable message.
	Err error
}

// Error returns the underlying error message. The kind is not included
// in the string — it travels separately for programmatic handling.
func (e *FlowError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error, allowing errors.Is and
// errors.As to walk the full chain through the FlowError wrapper.
func (e *FlowError) Unwrap() error { return e.Err }

// KindOf returns the kind of err when it is (or wraps) a *FlowError,
// and the empty Kind otherwise.
func KindOf(err error) Kind {
	var flowErr *FlowError
	if errors.As(err, &flowErr) {
		return flowErr.Kind
	}
	return ""
}

// CredentialsNotFound creates an error for an account with no stored secret.
func CredentialsNotFound(format string, args ...any) *FlowError {
	return &FlowError{Kind: KindCredentialsNotFound, Err: fmt.Errorf(format, args...)}
}

// AuthenticationRejected creates an error for a service-refused credential or code.
func AuthenticationRejected(format string, args ...any) *FlowError {
	return &FlowError{Kind: KindAuthenticationRejected, Err: fmt.Errorf(format, args...)}
}

// TwoFactorRequired creates the distinguished non-interactive outcome.
func TwoFactorRequired(format string, args ...any) *FlowError {
	return &FlowError{Kind: KindTwoFactorRequired, Err: fmt.Errorf(format, args...)}
}

// StoreFailure creates an error for a secure-storage failure.
func StoreFailure(format string, args ...any) *FlowError {
	return &FlowError{Kind: KindStore, Err: fmt.Errorf(format, args...)}
}

// BiometricDenied creates an error for an explicit verification failure.
func BiometricDenied(format string, args ...any) *FlowError {
	return &FlowError{Kind: KindBiometricDenied, Err: fmt.Errorf(format, args...)}
}

// BiometricUnavailable creates an error for a missing verification capability.
func BiometricUnavailable(format string, args ...any) *FlowError {
	return &FlowError{Kind: KindBiometricUnavailable, Err: fmt.Errorf(format, args...)}
}

// Network creates an error for a failed transport.
func Network(format string, args ...any) *FlowError {
	return &FlowError{Kind: KindNetwork, Err: fmt.Errorf(format, args...)}
}

// Internal creates an error for an unanticipated failure.
func Internal(format string, args ...any) *FlowError {
	return &FlowError{Kind: KindInternal, Err: fmt.Errorf(format, args...)}
}
