// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scoring

import (
	"strings"

	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/assessment"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/catalog"
)

// Compute scores the dataset and every distribution currently in g against
// cat, then applies the max-merge / best-distribution rule: the reported
// dataset score is, metric by metric, the larger of the dataset's own direct
// score and the best score any distribution achieved for that metric. The
// returned distribution scores are the unmerged, per-distribution direct
// scores.
func Compute(g *assessment.Graph, cat *catalog.Catalog) (dataset *Score, distributions []*Score, err error) {
	measurements, err := g.Measurements()
	if err != nil {
		return nil, nil, err
	}

	datasetRes, err := g.Dataset()
	if err != nil {
		return nil, nil, err
	}
	distRes, err := g.Distributions()
	if err != nil {
		return nil, nil, err
	}

	datasetDirect, err := scoreResource(datasetRes.Assessment, datasetRes.Resource, measurements, cat)
	if err != nil {
		return nil, nil, err
	}

	distDirects := make([]*Score, 0, len(distRes))
	for _, r := range distRes {
		s, err := scoreResource(r.Assessment, r.Resource, measurements, cat)
		if err != nil {
			return nil, nil, err
		}
		distDirects = append(distDirects, s)
	}

	return mergeBest(datasetDirect, distDirects), distDirects, nil
}

// scoreResource computes the direct (unmerged) Score for one resource,
// catalog order preserved, absent measurements scored 0/unscored.
func scoreResource(assessmentIRI, resourceIRI string, measurements map[assessment.MeasurementKey]assessment.Value, cat *catalog.Catalog) (*Score, error) {
	score := &Score{Assessment: assessmentIRI, Resource: resourceIRI}

	for _, dim := range cat.Dimensions() {
		dimScore := DimensionScore{IRI: dim.IRI}
		for _, metric := range dim.Metrics {
			value, ok := measurements[assessment.MeasurementKey{Assessment: assessmentIRI, Metric: metric.IRI}]
			if !ok {
				dimScore.Metrics = append(dimScore.Metrics, MetricScore{IRI: metric.IRI, Value: 0, IsScored: false})
				continue
			}

			awarded, err := metricScoreRule(metric.IRI, value, metric.Max)
			if err != nil {
				return nil, err
			}
			dimScore.Metrics = append(dimScore.Metrics, MetricScore{IRI: metric.IRI, Value: awarded, IsScored: true})
			dimScore.Total += awarded
		}
		score.Dimensions = append(score.Dimensions, dimScore)
	}
	return score, nil
}

// metricScoreRule applies §4.3a: status-code metrics require an integer
// value and award max iff it falls in [200, 300); every other metric
// requires a boolean and awards max iff true.
func metricScoreRule(metricIRI string, v assessment.Value, max int) (int, error) {
	if strings.HasSuffix(metricIRI, "accessUrlStatusCode") || strings.HasSuffix(metricIRI, "downloadUrlStatusCode") {
		if !v.IsInt() {
			return 0, ErrBadValueType
		}
		if v.I >= 200 && v.I < 300 {
			return max, nil
		}
		return 0, nil
	}

	if !v.IsBool() {
		return 0, ErrBadValueType
	}
	if v.B {
		return max, nil
	}
	return 0, nil
}

// mergeBest computes, metric by metric, the larger of the dataset's direct
// score and the best score any distribution achieved for that metric. A
// metric is scored in the result iff it was scored in the dataset or in any
// distribution. With no distributions the dataset's own direct score stands.
func mergeBest(datasetDirect *Score, distDirects []*Score) *Score {
	if len(distDirects) == 0 {
		return datasetDirect
	}

	merged := &Score{Assessment: datasetDirect.Assessment, Resource: datasetDirect.Resource}
	for di, dim := range datasetDirect.Dimensions {
		mergedDim := DimensionScore{IRI: dim.IRI}
		for mi, metric := range dim.Metrics {
			value := 0
			if metric.IsScored {
				value = metric.Value
			}
			scored := metric.IsScored

			for _, dd := range distDirects {
				dm := dd.Dimensions[di].Metrics[mi]
				if !dm.IsScored {
					continue
				}
				scored = true
				if dm.Value > value {
					value = dm.Value
				}
			}

			mergedDim.Metrics = append(mergedDim.Metrics, MetricScore{IRI: metric.IRI, Value: value, IsScored: scored})
			mergedDim.Total += value
		}
		merged.Dimensions = append(merged.Dimensions, mergedDim)
	}
	return merged
}
