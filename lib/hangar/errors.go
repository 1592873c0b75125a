// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package hangar

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes carried in hangar failure responses. The wire format is
// "code: message" in the response envelope's error string.
const (
	// ErrCodeDuplicateName: a create or rename collides with an
	// existing drone name. Rejected before any state mutation.
	ErrCodeDuplicateName = "duplicate-name"

	// ErrCodeInvalidName: the requested name is empty or malformed.
	// Rejected before any state mutation.
	ErrCodeInvalidName = "invalid-name"

	// ErrCodeNotFound: the referenced drone ID is unknown to the
	// hangar.
	ErrCodeNotFound = "not-found"

	// ErrCodeDroneBusy: the drone cannot take the command in its
	// current state (e.g. prompt delivery while the agent is wedged).
	ErrCodeDroneBusy = "drone-busy"

	// ErrCodeInternal: the hangar failed on its side of the fence.
	ErrCodeInternal = "internal"
)

// HangarError is a structured error from the hangar service. Callers
// use errors.As to extract it, or IsHangarError for a code check:
//
//	var hangarErr *hangar.HangarError
//	if errors.As(err, &hangarErr) {
//	    if hangarErr.Code == hangar.ErrCodeDuplicateName { ... }
//	}
type HangarError struct {
	// Action is the protocol action that failed. Filled in by the
	// client; empty on errors constructed server-side.
	Action string

	// Code is the machine-readable error code (ErrCode* constants).
	// Empty when the server's error string carried no recognizable
	// code prefix.
	Code string

	// Message is the human-readable description from the hangar.
	Message string
}

func (e *HangarError) Error() string {
	wire := e.Message
	if e.Code != "" {
		wire = e.Code + ": " + e.Message
	}
	if e.Action == "" {
		return wire
	}
	return fmt.Sprintf("hangar: %s failed: %s", e.Action, wire)
}

// Errf constructs a *HangarError with a formatted message. Handlers in
// the serving half return these; the socket server writes the
// "code: message" wire form into the response envelope.
func Errf(code, format string, args ...any) *HangarError {
	return &HangarError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsHangarError checks whether err is a *HangarError with the given
// error code.
func IsHangarError(err error, code string) bool {
	var hangarErr *HangarError
	if errors.As(err, &hangarErr) {
		return hangarErr.Code == code
	}
	return false
}

// parseWireError reconstructs a HangarError from a response envelope's
// error string. A recognized "code: message" prefix is split into its
// parts; anything else (transport errors, unknown-action responses)
// lands in Message with an empty Code.
func parseWireError(action, message string) *HangarError {
	if code, rest, ok := strings.Cut(message, ": "); ok && knownErrCode(code) {
		return &HangarError{Action: action, Code: code, Message: rest}
	}
	return &HangarError{Action: action, Message: message}
}

func knownErrCode(code string) bool {
	switch code {
	case ErrCodeDuplicateName, ErrCodeInvalidName, ErrCodeNotFound,
		ErrCodeDroneBusy, ErrCodeInternal:
		return true
	}
	return false
}
