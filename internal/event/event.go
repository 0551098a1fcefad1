// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package event holds the decoded shape of one inbound MQA event, after the
// Avro/schema-registry framing has already been stripped by internal/decode.
package event

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Type is one of the three upstream quality checks that produce an event.
type Type string

const (
	PropertiesChecked    Type = "PROPERTIES_CHECKED"
	URLsChecked          Type = "URLS_CHECKED"
	DCATComplianceChecked Type = "DCAT_COMPLIANCE_CHECKED"
)

// ErrUnknownEventType is a fatal, per-message error: the Avro decode
// succeeded but the `type` enum value is not one this worker recognizes.
var ErrUnknownEventType = errors.New("event: unknown event type")

// ParseType validates a raw enum string against the known event types.
func ParseType(raw string) (Type, error) {
	switch Type(raw) {
	case PropertiesChecked, URLsChecked, DCATComplianceChecked:
		return Type(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEventType, raw)
	}
}

// MqaEvent is one decoded inbound message.
type MqaEvent struct {
	EventType Type
	FdkID     uuid.UUID
	Graph     string
	Timestamp int64
}
