// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package assessment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/vocab"
)

const graphTurtlePrefixes = `
	@prefix dqv: <http://www.w3.org/ns/dqv#> .
	@prefix mqa: <https://data.norge.no/vocabulary/dcatno-mqa#> .
	@prefix dct: <http://purl.org/dc/terms/> .
	@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
`

func countQualityMeasurements(t *testing.T, g *Graph) int {
	t.Helper()
	return len(g.g.All(nil, res(vocab.RDFType), res(vocab.DQVQualityMeasurement)))
}

// TestEnsureMeasurement_ReusesExistingNode covers the reuse half of the
// measurement-creation rule: calling ensureMeasurement for a (assessment,
// metric) pair that already has a QualityMeasurement must return that same
// node and must not add a second containsQualityMeasurement link or a second
// QualityMeasurement node.
func TestEnsureMeasurement_ReusesExistingNode(t *testing.T) {
	g := New()
	require.NoError(t, g.Load(graphTurtlePrefixes+`
		<urn:ds-a> a mqa:DatasetAssessment ; mqa:assessmentOf <urn:dataset> ;
			mqa:containsQualityMeasurement _:m1 .
		_:m1 a dqv:QualityMeasurement ; dqv:isMeasurementOf mqa:downloadUrlAvailability ;
			dqv:computedOn <urn:dataset> ; dqv:value true .
	`))

	require.Equal(t, 1, countQualityMeasurements(t, g))

	node := g.ensureMeasurement("urn:ds-a", "urn:dataset", "https://data.norge.no/vocabulary/dcatno-mqa#downloadUrlAvailability")

	assert.Equal(t, 1, countQualityMeasurements(t, g), "reusing an existing measurement must not create a second node")
	links := g.g.All(res("urn:ds-a"), res(vocab.MQAContainsQualityMeasurement), nil)
	assert.Len(t, links, 1, "reusing an existing measurement must not add a second containsQualityMeasurement link")

	// Calling it again for the same pair must return the identical node.
	again := g.ensureMeasurement("urn:ds-a", "urn:dataset", "https://data.norge.no/vocabulary/dcatno-mqa#downloadUrlAvailability")
	assert.Equal(t, node.String(), again.String())
}

// TestEnsureMeasurement_CreatesNewNodeForUnmeasuredMetric covers the create
// half: a metric with no existing QualityMeasurement on the assessment gets
// a brand new node, linked via containsQualityMeasurement.
func TestEnsureMeasurement_CreatesNewNodeForUnmeasuredMetric(t *testing.T) {
	g := New()
	require.NoError(t, g.Load(graphTurtlePrefixes+`
		<urn:ds-a> a mqa:DatasetAssessment ; mqa:assessmentOf <urn:dataset> ;
			mqa:containsQualityMeasurement _:m1 .
		_:m1 a dqv:QualityMeasurement ; dqv:isMeasurementOf mqa:downloadUrlAvailability ;
			dqv:computedOn <urn:dataset> ; dqv:value true .
	`))
	require.Equal(t, 1, countQualityMeasurements(t, g))

	node := g.ensureMeasurement("urn:ds-a", "urn:dataset", "https://data.norge.no/vocabulary/dcatno-mqa#accessUrlStatusCode")

	assert.Equal(t, 2, countQualityMeasurements(t, g), "an unmeasured metric must get a new QualityMeasurement node")
	links := g.g.All(res("urn:ds-a"), res(vocab.MQAContainsQualityMeasurement), nil)
	assert.Len(t, links, 2)

	m := g.g.One(node, res(vocab.DQVIsMeasurementOf), nil)
	require.NotNil(t, m)
	assert.Equal(t, "https://data.norge.no/vocabulary/dcatno-mqa#accessUrlStatusCode", termKey(m.Object))
}

// stubScore is a minimal ScoreWriter test double: only the metrics listed in
// Metrics are reported as scored, exactly like internal/scoring.Score after
// the fix that omits unscored metrics from MetricScores().
type stubScore struct {
	assessment string
	resource   string
	total      int
	dims       map[string]int
	metrics    map[string]int
}

func (s stubScore) AssessmentIRI() string           { return s.assessment }
func (s stubScore) ResourceIRI() string             { return s.resource }
func (s stubScore) Total() int                      { return s.total }
func (s stubScore) DimensionTotals() map[string]int { return s.dims }
func (s stubScore) MetricScores() map[string]int    { return s.metrics }

// TestInsertScores_WritesOnlyScoredMetrics is the S4-equivalent round trip:
// a prior assessment already carries one measurement (downloadUrlAvailability),
// a newer event adds a second measurement (accessUrlStatusCode) to the same
// dataset assessment, and the catalog names a third metric
// (formatAvailability) that was never measured anywhere. After InsertScores,
// the resulting Turtle must contain a QualityMeasurement for the two
// measured metrics and must NOT fabricate one for the unmeasured third.
func TestInsertScores_WritesOnlyScoredMetrics(t *testing.T) {
	g := New()
	require.NoError(t, g.Load(graphTurtlePrefixes+`
		<urn:ds-a> a mqa:DatasetAssessment ; mqa:assessmentOf <urn:dataset> ;
			dct:modified "1970-01-01 00:00:00.000 +0000"^^xsd:dateTime ;
			mqa:containsQualityMeasurement _:m1 .
		_:m1 a dqv:QualityMeasurement ; dqv:isMeasurementOf mqa:downloadUrlAvailability ;
			dqv:computedOn <urn:dataset> ; dqv:value true .
	`))

	// The newer event adds a second, previously-unseen measurement to the
	// dataset's own assessment node.
	require.NoError(t, g.Load(graphTurtlePrefixes+`
		<urn:ds-a> mqa:containsQualityMeasurement _:m2 .
		_:m2 a dqv:QualityMeasurement ; dqv:isMeasurementOf mqa:accessUrlStatusCode ;
			dqv:computedOn <urn:dataset> ; dqv:value "200"^^xsd:integer .
	`))

	require.Equal(t, 2, countQualityMeasurements(t, g))

	score := stubScore{
		assessment: "urn:ds-a",
		resource:   "urn:dataset",
		total:      70,
		dims: map[string]int{
			"https://data.norge.no/vocabulary/dcatno-mqa#accessibility":    70,
			"https://data.norge.no/vocabulary/dcatno-mqa#interoperability": 0,
		},
		metrics: map[string]int{
			"https://data.norge.no/vocabulary/dcatno-mqa#downloadUrlAvailability": 20,
			"https://data.norge.no/vocabulary/dcatno-mqa#accessUrlStatusCode":     50,
			// formatAvailability intentionally absent: it was never measured.
		},
	}
	require.NoError(t, g.InsertScores(score))

	// The two already-measured metrics must reuse their existing nodes; only
	// the three aggregates (two dimensions + one overall) are new.
	assert.Equal(t, 5, countQualityMeasurements(t, g), "InsertScores must reuse existing metric nodes and only add the aggregate nodes")

	turtle, err := g.ToTurtle()
	require.NoError(t, err)
	assert.Contains(t, turtle, "downloadUrlAvailability")
	assert.Contains(t, turtle, "accessUrlStatusCode")
	assert.NotContains(t, turtle, "formatAvailability", "a metric that was never measured must not get a phantom score")

	// Dimension and overall aggregates are written unconditionally.
	assert.Equal(t, 1, strings.Count(turtle, "accessibilityScoring"))
	assert.Equal(t, 1, strings.Count(turtle, "interoperabilityScoring"))
	assert.Contains(t, turtle, "<"+vocab.MQAScoring+">")
}
