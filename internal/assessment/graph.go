// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package assessment wraps an in-memory RDF quad store with the handful of
// queries and mutations the scoring pipeline needs: discovering a dataset
// and its distributions, extracting measurements, reading/writing the
// `modified` timestamp, and writing scores back as QualityMeasurements.
//
// It follows the spec's design note 9(ii): blank-node measurement nodes are
// matched natively through the quad store's pattern queries (rdf2go.Graph.All
// tolerates nil wildcards and blank-node terms alike) rather than rewritten
// to synthetic IRIs and back.
package assessment

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/deiu/rdf2go"

	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/vocab"
)

// Resource pairs an assessment node with the dataset/distribution resource
// it is `assessmentOf`.
type Resource struct {
	Assessment string
	Resource   string
}

// Graph is the typed wrapper around the default-graph quad store.
type Graph struct {
	g         *rdf2go.Graph
	blankSeq  int
}

// New returns an empty graph.
func New() *Graph {
	g := rdf2go.NewGraph("")
	if g == nil {
		return nil
	}
	return &Graph{g: g}
}

// Load merges the quads parsed from turtle into the default graph.
func (a *Graph) Load(turtle string) error {
	if err := a.g.Parse(strings.NewReader(turtle), "text/turtle"); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

// Clear empties the graph by replacing the underlying quad store with a
// fresh one and resetting the blank-node counter.
func (a *Graph) Clear() {
	a.g = rdf2go.NewGraph("")
	a.blankSeq = 0
}

func res(iri string) rdf2go.Term { return rdf2go.NewResource(iri) }

func termKey(t rdf2go.Term) string {
	if t == nil {
		return ""
	}
	if r, ok := t.(*rdf2go.Resource); ok {
		return r.URI
	}
	return t.String()
}

// Dataset returns the single DatasetAssessment in the graph.
func (a *Graph) Dataset() (Resource, error) {
	matches := a.g.All(nil, res(vocab.RDFType), res(vocab.MQADatasetAssessment))
	if len(matches) != 1 {
		return Resource{}, ErrMissingDataset
	}
	subject := matches[0].Subject

	edge := a.g.One(subject, res(vocab.MQAAssessmentOf), nil)
	if edge == nil {
		return Resource{}, ErrMissingAssessedOf
	}
	return Resource{Assessment: termKey(subject), Resource: termKey(edge.Object)}, nil
}

// Distributions returns every DistributionAssessment, sorted ascending by
// assessment IRI.
func (a *Graph) Distributions() ([]Resource, error) {
	matches := a.g.All(nil, res(vocab.RDFType), res(vocab.MQADistributionAssessment))
	out := make([]Resource, 0, len(matches))
	for _, m := range matches {
		edge := a.g.One(m.Subject, res(vocab.MQAAssessmentOf), nil)
		if edge == nil {
			return nil, ErrMissingAssessedOf
		}
		out = append(out, Resource{Assessment: termKey(m.Subject), Resource: termKey(edge.Object)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Assessment < out[j].Assessment })
	return out, nil
}

// Measurements returns every (assessment, metric) -> value pair currently in
// the graph. A measurement whose owning assessment is not linked via
// containsQualityMeasurement from any known node is ignored, as is a
// measurement without a value literal.
func (a *Graph) Measurements() (map[MeasurementKey]Value, error) {
	owners := make(map[string]string) // measurement node key -> assessment IRI
	for _, t := range a.g.All(nil, res(vocab.MQAContainsQualityMeasurement), nil) {
		owners[termKey(t.Object)] = termKey(t.Subject)
	}

	out := make(map[MeasurementKey]Value)
	for _, t := range a.g.All(nil, res(vocab.DQVIsMeasurementOf), nil) {
		assessmentIRI, ok := owners[termKey(t.Subject)]
		if !ok {
			continue
		}
		metricIRI := termKey(t.Object)

		valueTriple := a.g.One(t.Subject, res(vocab.DQVValue), nil)
		if valueTriple == nil {
			continue
		}
		value, err := parseValue(valueTriple.Object)
		if err != nil {
			return nil, err
		}
		out[MeasurementKey{Assessment: assessmentIRI, Metric: metricIRI}] = value
	}
	return out, nil
}

func parseValue(t rdf2go.Term) (Value, error) {
	lit, ok := t.(*rdf2go.Literal)
	if !ok {
		return Value{}, ErrBadLiteral
	}

	datatype := ""
	if lit.Datatype != nil {
		datatype = termKey(lit.Datatype)
		datatype = strings.Trim(datatype, "<>")
	}

	switch datatype {
	case vocab.XSDBoolean:
		b, err := strconv.ParseBool(lit.Value)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrBadLiteral, err)
		}
		return BoolValue(b), nil
	case vocab.XSDInteger:
		i, err := strconv.ParseInt(lit.Value, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrBadLiteral, err)
		}
		return IntValue(i), nil
	default:
		if b, err := strconv.ParseBool(lit.Value); err == nil {
			return BoolValue(b), nil
		}
		if i, err := strconv.ParseInt(lit.Value, 10, 64); err == nil {
			return IntValue(i), nil
		}
		return Value{}, ErrBadLiteral
	}
}

// GetModified returns the dataset assessment's `modified` timestamp in
// epoch milliseconds, or found=false if it carries none.
func (a *Graph) GetModified() (ms int64, found bool, err error) {
	dataset, err := a.Dataset()
	if err != nil {
		return 0, false, err
	}

	t := a.g.One(res(dataset.Assessment), res(vocab.DCTModified), nil)
	if t == nil {
		return 0, false, nil
	}

	lit, ok := t.Object.(*rdf2go.Literal)
	if !ok {
		return 0, false, ErrBadTimestamp
	}

	parsed, err := time.Parse(vocab.TimestampLayout, lit.Value)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrBadTimestamp, err)
	}
	return parsed.UnixMilli(), true, nil
}

// SetModified writes (replacing any prior value) the dataset assessment's
// `modified` literal, formatted exactly per vocab.TimestampLayout in UTC.
func (a *Graph) SetModified(ms int64) error {
	dataset, err := a.Dataset()
	if err != nil {
		return err
	}

	subject := res(dataset.Assessment)
	for _, t := range a.g.All(subject, res(vocab.DCTModified), nil) {
		a.g.Remove(t)
	}

	formatted := time.UnixMilli(ms).UTC().Format(vocab.TimestampLayout)
	literal := rdf2go.NewLiteralWithDatatype(formatted, res(vocab.XSDDateTime))
	a.g.AddTriple(subject, res(vocab.DCTModified), literal)
	return nil
}

func (a *Graph) nextBlankNode() rdf2go.Term {
	a.blankSeq++
	return rdf2go.NewBlankNode(fmt.Sprintf("score%d", a.blankSeq))
}

// ensureMeasurement finds an existing QualityMeasurement on assessment for
// metric, or creates and links a fresh one, per the measurement creation
// rule in the spec.
func (a *Graph) ensureMeasurement(assessmentIRI, resourceIRI, metricIRI string) rdf2go.Term {
	assessment := res(assessmentIRI)
	for _, link := range a.g.All(assessment, res(vocab.MQAContainsQualityMeasurement), nil) {
		node := link.Object
		if m := a.g.One(node, res(vocab.DQVIsMeasurementOf), res(metricIRI)); m != nil {
			return node
		}
	}

	node := a.nextBlankNode()
	a.g.AddTriple(node, res(vocab.RDFType), res(vocab.DQVQualityMeasurement))
	a.g.AddTriple(node, res(vocab.DQVIsMeasurementOf), res(metricIRI))
	a.g.AddTriple(node, res(vocab.DQVComputedOn), res(resourceIRI))
	a.g.AddTriple(assessment, res(vocab.MQAContainsQualityMeasurement), node)
	return node
}

func (a *Graph) writeScore(assessmentIRI, resourceIRI, metricIRI string, score int) {
	node := a.ensureMeasurement(assessmentIRI, resourceIRI, metricIRI)
	for _, t := range a.g.All(node, res(vocab.MQAScore), nil) {
		a.g.Remove(t)
	}
	literal := rdf2go.NewLiteralWithDatatype(strconv.Itoa(score), res(vocab.XSDInteger))
	a.g.AddTriple(node, res(vocab.MQAScore), literal)
}

// ScoreWriter is the minimal shape InsertScores needs from a scored
// resource; internal/scoring.Score satisfies it.
type ScoreWriter interface {
	ResourceIRI() string
	AssessmentIRI() string
	Total() int
	DimensionTotals() map[string]int
	MetricScores() map[string]int
}

// InsertScores writes, for one scored resource, a score literal on each
// scored metric's QualityMeasurement (unscored metrics are left untouched,
// per s.MetricScores()), one aggregate measurement per dimension
// (IRI = dimension + "Scoring"), and one overall aggregate on the fixed
// `scoring` IRI — the two aggregates are always written, scored or not.
func (a *Graph) InsertScores(s ScoreWriter) error {
	assessmentIRI := s.AssessmentIRI()
	resourceIRI := s.ResourceIRI()
	if assessmentIRI == "" || resourceIRI == "" {
		return ErrWriteFailure
	}

	for metric, score := range s.MetricScores() {
		a.writeScore(assessmentIRI, resourceIRI, metric, score)
	}
	for dimension, total := range s.DimensionTotals() {
		a.writeScore(assessmentIRI, resourceIRI, dimension+vocab.ScoringSuffix, total)
	}
	a.writeScore(assessmentIRI, resourceIRI, vocab.MQAScoring, s.Total())
	return nil
}
