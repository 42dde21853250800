// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import "fmt"

// statusMessages maps well-known Security framework result codes to
// their human-readable messages. The wording is a stable part of
// Veil's user-facing output; change it only together with the
// documentation that quotes it.
//
// See: https://developer.apple.com/documentation/security/1542001-security_framework_result_codes
var statusMessages = map[int32]string{
	0:      "Success",
	-4:     "Function or operation not implemented",
	-25291: "No keychain is available",
	-25292: "The specified keychain is not a valid keychain file",
	-25293: "The specified keychain could not be opened",
	-25294: "A duplicate keychain item already exists",
	-25295: "The specified item could not be found in the keychain",
	-25296: "Keychain interaction is not allowed by the caller",
	-25297: "The keychain interaction was blocked by the user",
	-25298: "The caller does not have access to the keychain item",
	-25299: "The specified data is invalid for keychain",
	-25300: "No default keychain exists",
	-25308: "Interaction with the Security Server is not allowed",
	-26275: "An authorization/authentication was canceled",
	-26276: "Authorization/Authentication failed",
	-34018: "A required entitlement is missing (code signing issue)",
	-50:    "One or more parameters passed were not valid",
	-67030: "Device passcode is not set (required for biometric protection)",
}

// errSecItemNotFound is the Security framework code for a missing
// keychain item, which this package surfaces as ErrNotFound rather
// than a StoreError.
const errSecItemNotFound int32 = -25295

// statusByExit inverts statusMessages through the exit-status
// truncation the security tool performs: a child process exit carries
// only the low byte of the OSStatus, so -25295 surfaces as exit 49.
// Every code in the table has a distinct low byte, which makes the
// reconstruction unambiguous for the codes Veil knows about.
var statusByExit = map[int]int32{}

func init() {
	for status := range statusMessages {
		statusByExit[int(uint8(status))] = status
	}
}

// StatusMessage renders an OSStatus code as its human-readable
// message. Codes outside the table render as a generic unknown-error
// message carrying the raw code, never silently dropped.
func StatusMessage(status int32) string {
	if message, ok := statusMessages[status]; ok {
		return fmt.Sprintf("%s (error %d)", message, status)
	}
	return fmt.Sprintf("Unknown security error (error %d)", status)
}

// StoreError is a secure-storage operation failure. Status carries the
// OS-level result code when the backend produced one; zero means the
// operation failed before the OS reported a code (the tool would not
// spawn, the keyring service errored) and Detail carries the captured
// diagnostic text instead.
type StoreError struct {
	Status int32
	Detail string
}

func (e *StoreError) Error() string {
	if e.Status != 0 {
		return StatusMessage(e.Status)
	}
	if e.Detail != "" {
		return e.Detail
	}
	return "secure storage operation failed"
}
