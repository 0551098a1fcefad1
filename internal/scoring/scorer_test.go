// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/assessment"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/catalog"
)

// threeMetricCatalog builds the spec's seed catalog used throughout §8's
// scenarios: accessUrlStatusCode(50) + downloadUrlAvailability(20) in
// accessibility (total 70), formatAvailability(20) in interoperability
// (total 20), overall total 90.
func threeMetricCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	vocabTurtle := []byte(`
		@prefix dqv: <http://www.w3.org/ns/dqv#> .
		@prefix mqa: <https://data.norge.no/vocabulary/dcatno-mqa#> .

		mqa:accessibility a dqv:Dimension .
		mqa:interoperability a dqv:Dimension .

		mqa:accessUrlStatusCode a dqv:Metric ; dqv:inDimension mqa:accessibility .
		mqa:downloadUrlAvailability a dqv:Metric ; dqv:inDimension mqa:accessibility .
		mqa:formatAvailability a dqv:Metric ; dqv:inDimension mqa:interoperability .
	`)
	scoresTurtle := []byte(`
		@prefix mqa: <https://data.norge.no/vocabulary/dcatno-mqa#> .
		@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

		mqa:accessUrlStatusCode mqa:trueScore "50"^^xsd:integer .
		mqa:downloadUrlAvailability mqa:trueScore "20"^^xsd:integer .
		mqa:formatAvailability mqa:trueScore "20"^^xsd:integer .
	`)
	cat, err := catalog.LoadFrom(vocabTurtle, scoresTurtle)
	require.NoError(t, err)
	return cat
}

const turtlePrefixes = `
	@prefix dqv: <http://www.w3.org/ns/dqv#> .
	@prefix mqa: <https://data.norge.no/vocabulary/dcatno-mqa#> .
	@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
`

func metricScoreByIRI(t *testing.T, s *Score, metricIRI string) MetricScore {
	t.Helper()
	for _, d := range s.Dimensions {
		for _, m := range d.Metrics {
			if m.IRI == metricIRI {
				return m
			}
		}
	}
	t.Fatalf("metric %s not found", metricIRI)
	return MetricScore{}
}

func dimensionTotal(s *Score, dimIRI string) int {
	for _, d := range s.Dimensions {
		if d.IRI == dimIRI {
			return d.Total
		}
	}
	return -1
}

const (
	accessUrlStatusCode     = "https://data.norge.no/vocabulary/dcatno-mqa#accessUrlStatusCode"
	downloadUrlAvailability = "https://data.norge.no/vocabulary/dcatno-mqa#downloadUrlAvailability"
	formatAvailability      = "https://data.norge.no/vocabulary/dcatno-mqa#formatAvailability"
	accessibilityDim        = "https://data.norge.no/vocabulary/dcatno-mqa#accessibility"
	interoperabilityDim     = "https://data.norge.no/vocabulary/dcatno-mqa#interoperability"
)

// TestCompute_S1 mirrors scenario S1: new dataset, one distribution with a
// good URL and a bad format.
func TestCompute_S1(t *testing.T) {
	cat := threeMetricCatalog(t)
	g := assessment.New()
	require.NoError(t, g.Load(turtlePrefixes+`
		<urn:ds-a> a mqa:DatasetAssessment ; mqa:assessmentOf <urn:dataset> ;
			mqa:containsQualityMeasurement _:m1 .
		_:m1 a dqv:QualityMeasurement ; dqv:isMeasurementOf mqa:downloadUrlAvailability ;
			dqv:computedOn <urn:dataset> ; dqv:value true .

		<urn:dist-a> a mqa:DistributionAssessment ; mqa:assessmentOf <urn:distribution-a> ;
			mqa:containsQualityMeasurement _:m2, _:m3 .
		_:m2 a dqv:QualityMeasurement ; dqv:isMeasurementOf mqa:accessUrlStatusCode ;
			dqv:computedOn <urn:distribution-a> ; dqv:value "200"^^xsd:integer .
		_:m3 a dqv:QualityMeasurement ; dqv:isMeasurementOf mqa:formatAvailability ;
			dqv:computedOn <urn:distribution-a> ; dqv:value false .
	`))

	dataset, distributions, err := Compute(g, cat)
	require.NoError(t, err)
	require.Len(t, distributions, 1)

	distA := distributions[0]
	assert.Equal(t, 50, dimensionTotal(distA, accessibilityDim))
	assert.Equal(t, 0, dimensionTotal(distA, interoperabilityDim))
	assert.Equal(t, 50, distA.Total())
	assert.False(t, metricScoreByIRI(t, distA, downloadUrlAvailability).IsScored)

	assert.Equal(t, 70, dimensionTotal(dataset, accessibilityDim))
	assert.Equal(t, 0, dimensionTotal(dataset, interoperabilityDim))
	assert.Equal(t, 70, dataset.Total())
	assert.Equal(t, 50, metricScoreByIRI(t, dataset, accessUrlStatusCode).Value)
	assert.Equal(t, 20, metricScoreByIRI(t, dataset, downloadUrlAvailability).Value)
}

// TestCompute_S2 adds a second distribution that covers the metric the
// first one lacked, and expects the reported dataset score to combine the
// best of both.
func TestCompute_S2(t *testing.T) {
	cat := threeMetricCatalog(t)
	g := assessment.New()
	require.NoError(t, g.Load(turtlePrefixes+`
		<urn:ds-a> a mqa:DatasetAssessment ; mqa:assessmentOf <urn:dataset> ;
			mqa:containsQualityMeasurement _:m1 .
		_:m1 a dqv:QualityMeasurement ; dqv:isMeasurementOf mqa:downloadUrlAvailability ;
			dqv:computedOn <urn:dataset> ; dqv:value true .

		<urn:dist-a> a mqa:DistributionAssessment ; mqa:assessmentOf <urn:distribution-a> ;
			mqa:containsQualityMeasurement _:m2, _:m3 .
		_:m2 a dqv:QualityMeasurement ; dqv:isMeasurementOf mqa:accessUrlStatusCode ;
			dqv:computedOn <urn:distribution-a> ; dqv:value "200"^^xsd:integer .
		_:m3 a dqv:QualityMeasurement ; dqv:isMeasurementOf mqa:formatAvailability ;
			dqv:computedOn <urn:distribution-a> ; dqv:value false .

		<urn:dist-b> a mqa:DistributionAssessment ; mqa:assessmentOf <urn:distribution-b> ;
			mqa:containsQualityMeasurement _:m4 .
		_:m4 a dqv:QualityMeasurement ; dqv:isMeasurementOf mqa:formatAvailability ;
			dqv:computedOn <urn:distribution-b> ; dqv:value true .
	`))

	dataset, distributions, err := Compute(g, cat)
	require.NoError(t, err)
	require.Len(t, distributions, 2)

	var distA, distB *Score
	for _, d := range distributions {
		switch d.Resource {
		case "urn:distribution-a":
			distA = d
		case "urn:distribution-b":
			distB = d
		}
	}
	require.NotNil(t, distA)
	require.NotNil(t, distB)
	assert.Equal(t, 50, distA.Total())
	assert.Equal(t, 20, distB.Total())

	assert.Equal(t, 70, dimensionTotal(dataset, accessibilityDim))
	assert.Equal(t, 20, dimensionTotal(dataset, interoperabilityDim))
	assert.Equal(t, 90, dataset.Total())
}

func TestCompute_NoDistributions_ReportsDirectDatasetScore(t *testing.T) {
	cat := threeMetricCatalog(t)
	g := assessment.New()
	require.NoError(t, g.Load(turtlePrefixes+`
		<urn:ds-a> a mqa:DatasetAssessment ; mqa:assessmentOf <urn:dataset> ;
			mqa:containsQualityMeasurement _:m1 .
		_:m1 a dqv:QualityMeasurement ; dqv:isMeasurementOf mqa:downloadUrlAvailability ;
			dqv:computedOn <urn:dataset> ; dqv:value true .
	`))

	dataset, distributions, err := Compute(g, cat)
	require.NoError(t, err)
	assert.Empty(t, distributions)
	assert.Equal(t, 20, dataset.Total())
}

func TestMetricScoreRule_StatusCodeRequiresInt(t *testing.T) {
	_, err := metricScoreRule(accessUrlStatusCode, assessment.BoolValue(true), 50)
	assert.ErrorIs(t, err, ErrBadValueType)

	score, err := metricScoreRule(accessUrlStatusCode, assessment.IntValue(204), 50)
	require.NoError(t, err)
	assert.Equal(t, 50, score)

	score, err = metricScoreRule(accessUrlStatusCode, assessment.IntValue(404), 50)
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestMetricScoreRule_BooleanMetricRequiresBool(t *testing.T) {
	_, err := metricScoreRule(formatAvailability, assessment.IntValue(1), 20)
	assert.ErrorIs(t, err, ErrBadValueType)

	score, err := metricScoreRule(formatAvailability, assessment.BoolValue(true), 20)
	require.NoError(t, err)
	assert.Equal(t, 20, score)
}
