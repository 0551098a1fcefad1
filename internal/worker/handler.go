// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package worker implements the per-message state machine (EventHandler)
// and the per-worker receive/retry/commit loop (WorkerLoop) described by
// the scoring pipeline.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/assessment"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/catalog"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/decode"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/log"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/scoring"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/store"
)

// EventHandler runs the full decode -> fetch-prior -> reconcile -> load ->
// score -> insert -> post state machine for one message. It owns one
// assessment graph, reset at the start of every call.
type EventHandler struct {
	decoder decode.Decoder
	graph   *assessment.Graph
	catalog *catalog.Catalog
	store   store.AssessmentStore
}

// NewEventHandler builds a handler. decoder, catalog and store are shared
// read-only (or internally synchronized) collaborators; the graph is
// exclusive to this handler.
func NewEventHandler(decoder decode.Decoder, cat *catalog.Catalog, assessmentStore store.AssessmentStore) *EventHandler {
	return &EventHandler{decoder: decoder, graph: assessment.New(), catalog: cat, store: assessmentStore}
}

// Handle processes one raw transport payload to completion. A nil return
// means the message is fully handled — either POSTed successfully, or
// skipped (wrong schema, logged at warn; stale event, dropped silently) — and the
// caller should store the offset. A non-nil error means the attempt should
// be retried.
func (h *EventHandler) Handle(ctx context.Context, payload []byte) error {
	h.graph.Clear()

	evt, err := h.decoder.Decode(ctx, payload)
	if errors.Is(err, decode.ErrNotForUs) {
		log.Warnf("skipping event not addressed to this worker: %v", err)
		return nil
	}
	if err != nil {
		return err
	}

	fdkID := evt.FdkID.String()

	prior, found, err := h.store.GetPrior(ctx, fdkID)
	if err != nil {
		return err
	}

	if found {
		if err := h.graph.Load(prior); err != nil {
			return err
		}
		priorModified, hasModified, err := h.graph.GetModified()
		if err != nil {
			return err
		}
		if hasModified && priorModified > evt.Timestamp {
			return nil // stale event, drop silently
		}
	}

	if err := h.graph.Load(evt.Graph); err != nil {
		return err
	}
	if err := h.graph.SetModified(evt.Timestamp); err != nil {
		return err
	}

	dataset, distributions, err := scoring.Compute(h.graph, h.catalog)
	if err != nil {
		return err
	}

	if err := h.graph.InsertScores(dataset); err != nil {
		return err
	}
	for _, d := range distributions {
		if err := h.graph.InsertScores(d); err != nil {
			return err
		}
	}

	turtle, err := h.graph.ToTurtle()
	if err != nil {
		return err
	}
	jsonld, err := h.graph.ToJSONLD()
	if err != nil {
		return err
	}

	payload2 := store.AssessmentPayload{
		TurtleAssessment: turtle,
		JSONLDAssessment: jsonld,
		Scores:           scoring.BuildSummary(dataset, distributions, h.catalog),
	}
	if err := h.store.PostAssessment(ctx, fdkID, payload2); err != nil {
		return fmt.Errorf("post assessment for %s: %w", fdkID, err)
	}
	return nil
}
