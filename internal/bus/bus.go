// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bus wraps the confluent-kafka-go consumer with the exact,
// non-negotiable configuration this worker requires: manual offset storage
// so an offset is only durably committed once a message has been fully
// processed and POSTed downstream.
package bus

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// ConsumerGroup is fixed; every replica of this worker shares it so the
// broker distributes partitions across them.
const ConsumerGroup = "fdk-mqa-scoring-service"

// ErrTransport covers event-bus receive/offset-store errors. It is fatal to
// the worker — the outer process is expected to restart.
var ErrTransport = errors.New("bus: transport error")

// Message is one received record, retaining the underlying kafka.Message so
// StoreOffset can reference its exact topic/partition/offset.
type Message struct {
	Value []byte
	raw   *kafka.Message
}

// Consumer is a single worker's dedicated event-bus consumer.
type Consumer struct {
	c *kafka.Consumer
}

// NewConsumer builds and subscribes a consumer per §6's required
// configuration: session timeout 6000ms, auto.offset.reset=beginning,
// enable.auto.commit=true with enable.auto.offset.store=false, and a
// 2MiB max.partition.fetch.bytes.
func NewConsumer(brokers []string, topic string) (*Consumer, error) {
	cfg := &kafka.ConfigMap{
		"bootstrap.servers":        strings.Join(brokers, ","),
		"group.id":                 ConsumerGroup,
		"session.timeout.ms":       6000,
		"auto.offset.reset":        "beginning",
		"enable.auto.commit":       true,
		"enable.auto.offset.store": false,
		"max.partition.fetch.bytes": 2097152,
	}

	c, err := kafka.NewConsumer(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if err := c.SubscribeTopics([]string{topic}, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return &Consumer{c: c}, nil
}

// Poll waits up to timeout for the next message. A nil Message with a nil
// error means no message arrived in time; the caller should poll again.
func (cons *Consumer) Poll(timeout time.Duration) (*Message, error) {
	ev := cons.c.Poll(int(timeout.Milliseconds()))
	switch e := ev.(type) {
	case *kafka.Message:
		return &Message{Value: e.Value, raw: e}, nil
	case kafka.Error:
		return nil, fmt.Errorf("%w: %v", ErrTransport, e)
	default:
		// Rebalance notifications, stats, and the nil (timeout) case all
		// mean "nothing to hand back this poll".
		return nil, nil
	}
}

// StoreOffset records msg's offset for the next auto-commit. It must only
// be called after msg has been fully, successfully processed.
func (cons *Consumer) StoreOffset(msg *Message) error {
	if _, err := cons.c.StoreMessage(msg.raw); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

// Close releases the underlying consumer.
func (cons *Consumer) Close() error {
	return cons.c.Close()
}
