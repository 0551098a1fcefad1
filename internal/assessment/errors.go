// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package assessment

import "errors"

// Sentinel error kinds returned by AssessmentGraph operations. Callers use
// errors.Is against these to decide whether a message is retriable.
var (
	ErrGraphInit        = errors.New("assessment: graph init failed")
	ErrParse            = errors.New("assessment: turtle parse failed")
	ErrMissingDataset    = errors.New("assessment: no DatasetAssessment found")
	ErrMissingAssessedOf = errors.New("assessment: assessment has no assessmentOf edge")
	ErrBadLiteral       = errors.New("assessment: measurement value literal could not be parsed")
	ErrBadTimestamp     = errors.New("assessment: modified literal could not be parsed")
	ErrWriteFailure     = errors.New("assessment: failed to write score")
)
