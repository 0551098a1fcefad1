// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package vocab holds the RDF vocabulary IRIs the scoring worker reads and
// writes. None of these are invented here; they are the terms the upstream
// fdk-mqa pipeline already assesses datasets against.
package vocab

// Data Quality Vocabulary (DQV) terms.
const (
	DQVQualityMeasurement = "http://www.w3.org/ns/dqv#QualityMeasurement"
	DQVDimension          = "http://www.w3.org/ns/dqv#Dimension"
	DQVMetric             = "http://www.w3.org/ns/dqv#Metric"
	DQVHasQualityMeasurement = "http://www.w3.org/ns/dqv#hasQualityMeasurement"
	DQVIsMeasurementOf    = "http://www.w3.org/ns/dqv#isMeasurementOf"
	DQVComputedOn         = "http://www.w3.org/ns/dqv#computedOn"
	DQVValue              = "http://www.w3.org/ns/dqv#value"
	DQVInDimension        = "http://www.w3.org/ns/dqv#inDimension"
)

// DCAT-NO MQA terms (https://data.norge.no/vocabulary/dcatno-mqa).
const (
	MQADatasetAssessment              = "https://data.norge.no/vocabulary/dcatno-mqa#DatasetAssessment"
	MQADistributionAssessment         = "https://data.norge.no/vocabulary/dcatno-mqa#DistributionAssessment"
	MQAAssessmentOf                   = "https://data.norge.no/vocabulary/dcatno-mqa#assessmentOf"
	MQAContainsQualityMeasurement     = "https://data.norge.no/vocabulary/dcatno-mqa#containsQualityMeasurement"
	MQAHasDistributionAssessment      = "https://data.norge.no/vocabulary/dcatno-mqa#hasDistributionAssessment"
	MQATrueScore                      = "https://data.norge.no/vocabulary/dcatno-mqa#trueScore"
	MQAScore                          = "https://data.norge.no/vocabulary/dcatno-mqa#score"
	MQAScoring                        = "https://data.norge.no/vocabulary/dcatno-mqa#scoring"
)

// Dublin Core / RDF / XSD terms.
const (
	DCTModified = "http://purl.org/dc/terms/modified"
	RDFType     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	XSDInteger  = "http://www.w3.org/2001/XMLSchema#integer"
	XSDBoolean  = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
)

// ScoringSuffix is appended to a dimension IRI to derive the IRI of the
// metric used to record that dimension's aggregate score.
const ScoringSuffix = "Scoring"

// TimestampLayout is the wire format for the dataset assessment's `modified`
// literal: not ISO-8601 (space separator, `+0000` suffix). Downstream
// readers depend on this exact layout.
const TimestampLayout = "2006-01-02 15:04:05.000 -0700"
