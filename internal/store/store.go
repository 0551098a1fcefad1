// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package store is the boundary to the downstream assessment-persistence
// HTTP service: GET the prior assessment Turtle for a dataset, and POST the
// freshly scored one.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/log"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/scoring"
)

// ErrHttpUpstream covers any non-202 POST response or non-(200|404) GET
// response. It is retriable.
var ErrHttpUpstream = errors.New("store: upstream returned an unexpected status")

// AssessmentPayload is the POST body's shape.
type AssessmentPayload struct {
	TurtleAssessment string          `json:"turtle_assessment"`
	JSONLDAssessment string          `json:"jsonld_assessment"`
	Scores           scoring.Summary `json:"scores"`
}

// AssessmentStore is the boundary contract EventHandler depends on.
type AssessmentStore interface {
	GetPrior(ctx context.Context, fdkID string) (turtle string, found bool, err error)
	PostAssessment(ctx context.Context, fdkID string, payload AssessmentPayload) error
}

// HTTPAssessmentStore implements AssessmentStore against the
// SCORING_API_URL service.
type HTTPAssessmentStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPAssessmentStore builds a store client with the given request
// timeout. The underlying http.Client is safe to share across goroutines.
func NewHTTPAssessmentStore(baseURL, apiKey string, timeout time.Duration) *HTTPAssessmentStore {
	return &HTTPAssessmentStore{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetPrior fetches the existing assessment Turtle for fdkID, if any.
func (s *HTTPAssessmentStore) GetPrior(ctx context.Context, fdkID string) (string, bool, error) {
	url := fmt.Sprintf("%s/api/assessments/%s", s.baseURL, fdkID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrHttpUpstream, err)
	}
	req.Header.Set("Accept", "text/turtle")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrHttpUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return "", false, nil
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", false, fmt.Errorf("%w: %v", ErrHttpUpstream, err)
		}
		return string(body), true, nil
	default:
		return "", false, fmt.Errorf("%w: GET status %d", ErrHttpUpstream, resp.StatusCode)
	}
}

// PostAssessment submits the scored assessment. A 413 is logged at warn
// with the payload size but still reported as a (retriable) failure.
func (s *HTTPAssessmentStore) PostAssessment(ctx context.Context, fdkID string, payload AssessmentPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHttpUpstream, err)
	}

	url := fmt.Sprintf("%s/api/assessments/%s", s.baseURL, fdkID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHttpUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-API-KEY", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHttpUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusRequestEntityTooLarge {
		log.Warnf("assessment payload for %s rejected as too large (%d bytes)", fdkID, len(body))
		return fmt.Errorf("%w: 413 payload too large", ErrHttpUpstream)
	}
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: POST status %d", ErrHttpUpstream, resp.StatusCode)
	}
	return nil
}
