// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package websocket

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/clubzones/internal/zones"
)

// Message types
const (
	MessageTypeCalculate       = "calculate"
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
	MessageTypeProgress        = "progress"
	MessageTypeZones           = "zones"
	MessageTypeFallback        = "fallback"
	MessageTypeCancelled       = "cancelled"
	MessageTypeError           = "error"
	MessageTypeDatasetReplaced = "dataset_replaced"
)

// Error codes carried by error messages.
const (
	ErrCodeBadMessage     = "BAD_MESSAGE"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeNotInitialized = "NOT_INITIALIZED"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// Message is a server to client message.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ClientMessage is a client to server message. Data is decoded according
// to Type.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ProgressData is the payload of a progress message.
type ProgressData struct {
	Stage     zones.Stage `json:"stage"`
	Fraction  float64     `json:"fraction"`
	Locations int         `json:"locations"`
	ElapsedMS int64       `json:"elapsed_ms"`
}

// CancelledData is the payload of a cancelled message.
type CancelledData struct {
	Mode         string  `json:"mode"`
	BufferMeters float64 `json:"buffer_meters"`
}

// ErrorData is the payload of an error message.
type ErrorData struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func errorMessage(code, message string, details map[string]interface{}) Message {
	return Message{Type: MessageTypeError, Data: ErrorData{Code: code, Message: message, Details: details}}
}
