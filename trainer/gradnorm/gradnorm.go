/*
 *     Copyright 2023 The Dragonfly Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package gradnorm computes aggregate gradient norms over parameter collections.
package gradnorm

import (
	"errors"
	"math"

	pkgmath "d7y.io/trainkit/pkg/math"
	"d7y.io/trainkit/pkg/tensor"
)

// ErrInvalidNormType is returned for norm orders whose root is undefined.
var ErrInvalidNormType = errors.New("norm type must be non-zero")

// GradNorm returns the normType norm of all gradients of params taken as a
// single concatenated vector. Parameters without gradient are skipped and
// 0 is returned when none remain.
func GradNorm(normType float64, params ...*tensor.Parameter) (float64, error) {
	if normType == 0 || math.IsNaN(normType) {
		return 0, ErrInvalidNormType
	}

	var norms []float64
	for _, p := range params {
		if p == nil || p.Grad == nil {
			continue
		}

		norms = append(norms, p.Grad.Norm(normType))
	}

	if len(norms) == 0 {
		return 0, nil
	}

	if math.IsInf(normType, 1) {
		return pkgmath.Max(norms...), nil
	}

	var total float64
	for _, norm := range norms {
		total += math.Pow(norm, normType)
	}

	return math.Pow(total, 1/normType), nil
}
