// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"errors"
	"fmt"
)

// APIError represents a structured error response from the account
// service. Callers can use errors.As to extract the structured
// information:
//
//	var apiErr *relay.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.Code == relay.CodeAuthenticationRejected { ... }
//	}
type APIError struct {
	// Code is the service error code (e.g., "authentication_rejected").
	Code string `json:"code"`
	// Message is the human-readable error description from the service.
	Message string `json:"message"`
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("relay: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Error codes returned by the account service.
const (
	CodeAuthenticationRejected = "authentication_rejected"
	CodeInvalidCode            = "invalid_code"
	CodeSessionExpired         = "session_expired"
	CodeNotFound               = "not_found"
	CodeAliasExists            = "alias_exists"
	CodeAliasLimitReached      = "alias_limit_reached"
	CodeRateLimited            = "rate_limited"
	CodeInvalidParam           = "invalid_param"
)

// IsAPIError checks whether err is a *APIError with the given error code.
func IsAPIError(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
