// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scoring

import "errors"

// ErrBadValueType is returned when a measurement's value does not match the
// type the metric scoring rule requires for that metric (integer for the
// two status-code metrics, boolean for everything else).
var ErrBadValueType = errors.New("scoring: value does not match metric's expected type")
