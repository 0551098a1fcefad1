// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scoring

import "github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/catalog"

// MetJson is one scored metric in the JSON summary.
type MetJson struct {
	ID       string `json:"id"`
	Score    int    `json:"score"`
	IsScored bool   `json:"is_scored"`
	MaxScore int    `json:"max_score"`
}

// DimJson is one scored dimension in the JSON summary.
type DimJson struct {
	ID       string    `json:"id"`
	Score    int       `json:"score"`
	MaxScore int       `json:"max_score"`
	Metrics  []MetJson `json:"metrics"`
}

// ScoreJson is the scored tree for one resource (dataset or distribution).
type ScoreJson struct {
	ID         string    `json:"id"`
	Score      int       `json:"score"`
	MaxScore   int       `json:"max_score"`
	Dimensions []DimJson `json:"dimensions"`
}

// Summary is the full POST payload's `scores` field.
type Summary struct {
	Dataset       ScoreJson   `json:"dataset"`
	Distributions []ScoreJson `json:"distributions"`
}

// BuildSummary converts a dataset Score and its distribution Scores into the
// stable JSON structure POSTed downstream.
func BuildSummary(dataset *Score, distributions []*Score, cat *catalog.Catalog) Summary {
	distJSON := make([]ScoreJson, 0, len(distributions))
	for _, d := range distributions {
		distJSON = append(distJSON, toScoreJSON(d, cat))
	}
	return Summary{Dataset: toScoreJSON(dataset, cat), Distributions: distJSON}
}

func toScoreJSON(s *Score, cat *catalog.Catalog) ScoreJson {
	dims := make([]DimJson, 0, len(s.Dimensions))
	for _, d := range s.Dimensions {
		metrics := make([]MetJson, 0, len(d.Metrics))
		for _, m := range d.Metrics {
			max, _ := cat.MetricMax(m.IRI)
			metrics = append(metrics, MetJson{ID: m.IRI, Score: m.Value, IsScored: m.IsScored, MaxScore: max})
		}
		dims = append(dims, DimJson{ID: d.IRI, Score: d.Total, MaxScore: dimensionMax(cat, d.IRI), Metrics: metrics})
	}
	return ScoreJson{ID: s.Resource, Score: s.Total(), MaxScore: cat.Total(), Dimensions: dims}
}

func dimensionMax(cat *catalog.Catalog, dimIRI string) int {
	for _, d := range cat.Dimensions() {
		if d.IRI == dimIRI {
			return d.Total
		}
	}
	return 0
}
