// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads the worker's configuration from environment
// variables and validates the resulting document against an embedded JSON
// Schema before anything else starts, so a misconfigured deploy fails fast
// with a readable error instead of misbehaving at the first message.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config.schema.json
var schemaJSON []byte

// Config is every externally tunable setting of the scoring worker.
type Config struct {
	Brokers             []string      `json:"brokers"`
	SchemaRegistryURLs  []string      `json:"schemaRegistryUrls"`
	InputTopic          string        `json:"inputTopic"`
	ScoringAPIURL       string        `json:"scoringApiUrl"`
	APIKey              string        `json:"apiKey"`
	MetricsAddr         string        `json:"metricsAddr"`
	NumWorkers          int           `json:"numWorkers"`
	LogLevel            string        `json:"logLevel"`
	HTTPTimeoutSeconds  int           `json:"httpTimeoutSeconds"`
}

// HTTPTimeout is HTTPTimeoutSeconds as a time.Duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer, got %q", key, raw)
	}
	return v, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads the worker's configuration from environment variables and
// validates it against the embedded schema.
func Load() (Config, error) {
	numWorkers, err := getenvInt("NUM_WORKERS", 4)
	if err != nil {
		return Config{}, err
	}
	httpTimeout, err := getenvInt("HTTP_TIMEOUT_SECONDS", 10)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Brokers:            splitCSV(getenv("BROKERS", "localhost:9092")),
		SchemaRegistryURLs: splitCSV(getenv("SCHEMA_REGISTRY", "http://localhost:8081")),
		InputTopic:         getenv("INPUT_TOPIC", "mqa-events"),
		ScoringAPIURL:      getenv("SCORING_API_URL", "http://localhost:8082"),
		APIKey:             getenv("API_KEY", ""),
		MetricsAddr:        getenv("METRICS_ADDR", ":9090"),
		NumWorkers:         numWorkers,
		LogLevel:           getenv("LOG_LEVEL", "info"),
		HTTPTimeoutSeconds: httpTimeout,
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("config: invalid embedded schema: %w", err)
	}
	schema, err := compiler.Compile("config.schema.json")
	if err != nil {
		return fmt.Errorf("config: invalid embedded schema: %w", err)
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: failed to marshal for validation: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("config: failed to unmarshal for validation: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}
