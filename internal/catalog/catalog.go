// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package catalog loads the score-definition catalog: which metrics exist,
// which dimension each belongs to, and the maximum ("true") score each
// metric can award. The catalog is parsed once at process start from two
// embedded Turtle documents and is immutable and safely shareable
// read-only afterwards.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/deiu/rdf2go"

	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/vocab"
)

//go:embed vocabulary.ttl
var embeddedVocabulary []byte

//go:embed default_scores.ttl
var embeddedScores []byte

// ErrCatalogLoad is returned when either embedded graph fails to parse or a
// metric lacks a parseable, non-negative trueScore. It is fatal at startup.
var ErrCatalogLoad = errors.New("catalog: failed to load score catalog")

// Metric is one scored check within a Dimension.
type Metric struct {
	IRI string
	Max int
}

// Dimension groups metrics, ordered ascending by IRI, with a derived total.
type Dimension struct {
	IRI     string
	Metrics []Metric
	Total   int
}

// Catalog is the immutable, ordered set of dimensions and metrics.
type Catalog struct {
	dimensions []Dimension
	total      int
	maxByIRI   map[string]int
	dimByIRI   map[string]string
}

// Load parses the two Turtle documents embedded at build time.
func Load() (*Catalog, error) {
	return LoadFrom(embeddedVocabulary, embeddedScores)
}

// LoadFrom parses an arbitrary vocabulary graph and default-scores graph.
// It is exported so tests can build small, spec-example-sized catalogs
// without pulling in the full embedded vocabulary.
func LoadFrom(vocabTurtle, scoresTurtle []byte) (*Catalog, error) {
	g := rdf2go.NewGraph("")
	if g == nil {
		return nil, ErrCatalogLoad
	}
	if err := g.Parse(bytes.NewReader(vocabTurtle), "text/turtle"); err != nil {
		return nil, fmt.Errorf("%w: vocabulary: %v", ErrCatalogLoad, err)
	}
	if err := g.Parse(bytes.NewReader(scoresTurtle), "text/turtle"); err != nil {
		return nil, fmt.Errorf("%w: default-scores: %v", ErrCatalogLoad, err)
	}

	res := func(iri string) rdf2go.Term { return rdf2go.NewResource(iri) }

	dimMatches := g.All(nil, res(vocab.RDFType), res(vocab.DQVDimension))
	dimIRIs := make([]string, 0, len(dimMatches))
	for _, m := range dimMatches {
		dimIRIs = append(dimIRIs, m.Subject.String())
	}
	sort.Strings(dimIRIs)

	maxByIRI := make(map[string]int)
	dimByIRI := make(map[string]string)
	dimensions := make([]Dimension, 0, len(dimIRIs))
	total := 0

	for _, dimIRI := range dimIRIs {
		dimSubject := strings.Trim(dimIRI, "<>")

		metricMatches := g.All(nil, res(vocab.RDFType), res(vocab.DQVMetric))
		metrics := make([]Metric, 0)
		for _, mm := range metricMatches {
			inDim := g.One(mm.Subject, res(vocab.DQVInDimension), res(dimSubject))
			if inDim == nil {
				continue
			}

			scoreTriple := g.One(mm.Subject, res(vocab.MQATrueScore), nil)
			if scoreTriple == nil {
				return nil, fmt.Errorf("%w: metric %s has no trueScore", ErrCatalogLoad, mm.Subject)
			}
			lit, ok := scoreTriple.Object.(*rdf2go.Literal)
			if !ok {
				return nil, fmt.Errorf("%w: metric %s trueScore is not a literal", ErrCatalogLoad, mm.Subject)
			}
			max, err := strconv.Atoi(lit.Value)
			if err != nil || max < 0 {
				return nil, fmt.Errorf("%w: metric %s has invalid trueScore %q", ErrCatalogLoad, mm.Subject, lit.Value)
			}

			metricIRI := strings.Trim(mm.Subject.String(), "<>")
			metrics = append(metrics, Metric{IRI: metricIRI, Max: max})
			maxByIRI[metricIRI] = max
			dimByIRI[metricIRI] = dimSubject
		}
		sort.Slice(metrics, func(i, j int) bool { return metrics[i].IRI < metrics[j].IRI })

		dimTotal := 0
		for _, m := range metrics {
			dimTotal += m.Max
		}

		dimensions = append(dimensions, Dimension{IRI: dimSubject, Metrics: metrics, Total: dimTotal})
		total += dimTotal
	}

	return &Catalog{dimensions: dimensions, total: total, maxByIRI: maxByIRI, dimByIRI: dimByIRI}, nil
}

// Dimensions returns the ordered sequence of dimensions, stable across runs.
func (c *Catalog) Dimensions() []Dimension { return c.dimensions }

// Total is the sum of all dimension totals.
func (c *Catalog) Total() int { return c.total }

// MetricMax returns a metric's maximum score and whether it is known.
func (c *Catalog) MetricMax(metricIRI string) (int, bool) {
	max, ok := c.maxByIRI[metricIRI]
	return max, ok
}

// DimensionOf returns the dimension IRI a metric belongs to.
func (c *Catalog) DimensionOf(metricIRI string) (string, bool) {
	d, ok := c.dimByIRI[metricIRI]
	return d, ok
}
