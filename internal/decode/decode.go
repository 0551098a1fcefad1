// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package decode strips the Confluent schema-registry Avro framing off an
// inbound message and turns it into an event.MqaEvent, or reports that the
// message isn't addressed to this worker.
package decode

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/linkedin/goavro/v2"
	"github.com/riferrei/srclient"

	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/event"
)

// wantNamespace and wantName identify the only Avro record this worker
// processes; every other (namespace, name) pair is ErrNotForUs.
const (
	wantNamespace = "no.fdk.mqa"
	wantName      = "MQAEvent"
)

// ErrNotForUs means the payload decoded fine but names a schema this worker
// does not process. The caller should still acknowledge the message.
var ErrNotForUs = errors.New("decode: event schema is not addressed to this worker")

// ErrDecode covers every other decode failure: malformed framing, unknown
// schema ID, Avro decode error, or a record this worker's schema cannot
// make sense of.
var ErrDecode = errors.New("decode: payload could not be decoded")

// Decoder turns one raw transport payload into an MqaEvent.
type Decoder interface {
	Decode(ctx context.Context, payload []byte) (*event.MqaEvent, error)
}

type schemaIdentity struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

type cachedSchema struct {
	codec    *goavro.Codec
	identity schemaIdentity
}

// SchemaRegistryDecoder decodes Confluent wire-format Avro: a 1-byte magic
// byte (always 0), a 4-byte big-endian schema ID, then the Avro binary
// body. Schemas are resolved against one or more registry URLs (first is
// primary, the rest are fallbacks) and cached by ID for the process
// lifetime — the catalog of schema IDs in use is small and never changes
// underneath a running consumer.
type SchemaRegistryDecoder struct {
	clients []*srclient.SchemaRegistryClient

	mu    sync.Mutex
	cache map[int]cachedSchema
}

// NewSchemaRegistryDecoder builds a decoder against one or more registry
// URLs. At least one URL is required.
func NewSchemaRegistryDecoder(registryURLs []string) *SchemaRegistryDecoder {
	clients := make([]*srclient.SchemaRegistryClient, 0, len(registryURLs))
	for _, u := range registryURLs {
		clients = append(clients, srclient.CreateSchemaRegistryClient(u))
	}
	return &SchemaRegistryDecoder{clients: clients, cache: make(map[int]cachedSchema)}
}

// Decode implements Decoder.
func (d *SchemaRegistryDecoder) Decode(ctx context.Context, payload []byte) (*event.MqaEvent, error) {
	if len(payload) < 5 {
		return nil, fmt.Errorf("%w: payload shorter than the 5-byte wire header", ErrDecode)
	}
	if payload[0] != 0 {
		return nil, fmt.Errorf("%w: unsupported magic byte %d", ErrDecode, payload[0])
	}
	schemaID := int(binary.BigEndian.Uint32(payload[1:5]))

	schema, err := d.resolve(schemaID)
	if err != nil {
		return nil, fmt.Errorf("%w: schema %d: %v", ErrDecode, schemaID, err)
	}

	if schema.identity.Namespace != wantNamespace || schema.identity.Name != wantName {
		return nil, fmt.Errorf("%w: (%s, %s)", ErrNotForUs, schema.identity.Namespace, schema.identity.Name)
	}

	native, _, err := schema.codec.NativeFromBinary(payload[5:])
	if err != nil {
		return nil, fmt.Errorf("%w: avro decode: %v", ErrDecode, err)
	}
	record, ok := native.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: unexpected avro record shape", ErrDecode)
	}

	return recordToEvent(record)
}

func (d *SchemaRegistryDecoder) resolve(schemaID int) (cachedSchema, error) {
	d.mu.Lock()
	if cached, ok := d.cache[schemaID]; ok {
		d.mu.Unlock()
		return cached, nil
	}
	d.mu.Unlock()

	var lastErr error
	for _, client := range d.clients {
		schema, err := client.GetSchema(schemaID)
		if err != nil {
			lastErr = err
			continue
		}

		codec, err := goavro.NewCodec(schema.Schema())
		if err != nil {
			return cachedSchema{}, err
		}

		var identity schemaIdentity
		if err := json.Unmarshal([]byte(schema.Schema()), &identity); err != nil {
			return cachedSchema{}, err
		}

		cached := cachedSchema{codec: codec, identity: identity}
		d.mu.Lock()
		d.cache[schemaID] = cached
		d.mu.Unlock()
		return cached, nil
	}
	return cachedSchema{}, lastErr
}

func recordToEvent(record map[string]interface{}) (*event.MqaEvent, error) {
	rawType, _ := record["type"].(string)
	evType, err := event.ParseType(rawType)
	if err != nil {
		return nil, err
	}

	fdkIDRaw, _ := record["fdkId"].(string)
	fdkID, err := uuid.Parse(fdkIDRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: fdkId: %v", ErrDecode, err)
	}

	graph, _ := record["graph"].(string)
	timestamp, err := asInt64(record["timestamp"])
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp: %v", ErrDecode, err)
	}

	return &event.MqaEvent{EventType: evType, FdkID: fdkID, Graph: graph, Timestamp: timestamp}, nil
}

func asInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected timestamp type %T", v)
	}
}
