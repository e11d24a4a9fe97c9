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

package gradnorm

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"d7y.io/trainkit/pkg/tensor"
)

func TestGradNorm(t *testing.T) {
	tests := []struct {
		name     string
		normType float64
		params   []*tensor.Parameter
		expect   func(t *testing.T, norm float64, err error)
	}{
		{
			name:     "flattened two vector",
			normType: 2,
			params: []*tensor.Parameter{
				{Name: "a", Grad: tensor.FromSlice(3)},
				{Name: "b", Grad: tensor.FromSlice(4)},
			},
			expect: func(t *testing.T, norm float64, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(5.0, norm)
			},
		},
		{
			name:     "single parameter",
			normType: 2,
			params: []*tensor.Parameter{
				{Name: "a", Grad: tensor.FromSlice(3, 4)},
			},
			expect: func(t *testing.T, norm float64, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(5.0, norm)
			},
		},
		{
			name:     "parameters without gradient are skipped",
			normType: 1,
			params: []*tensor.Parameter{
				{Name: "a", Grad: tensor.FromSlice(-1, 2)},
				{Name: "b", Value: tensor.FromSlice(100)},
				nil,
			},
			expect: func(t *testing.T, norm float64, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(3.0, norm)
			},
		},
		{
			name:     "no gradients",
			normType: 2,
			params: []*tensor.Parameter{
				{Name: "a", Value: tensor.FromSlice(1)},
			},
			expect: func(t *testing.T, norm float64, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(0.0, norm)
			},
		},
		{
			name:     "infinity norm",
			normType: math.Inf(1),
			params: []*tensor.Parameter{
				{Name: "a", Grad: tensor.FromSlice(3, -7)},
				{Name: "b", Grad: tensor.FromSlice(5)},
			},
			expect: func(t *testing.T, norm float64, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(7.0, norm)
			},
		},
		{
			name:     "zero norm type",
			normType: 0,
			params: []*tensor.Parameter{
				{Name: "a", Grad: tensor.FromSlice(3, 4)},
			},
			expect: func(t *testing.T, norm float64, err error) {
				assert := assert.New(t)
				assert.True(errors.Is(err, ErrInvalidNormType))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			norm, err := GradNorm(tc.normType, tc.params...)
			tc.expect(t, norm, err)
		})
	}
}

func TestGradNorm_Concatenation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := rapid.Float64Range(1, 4).Draw(rt, "p")
		groups := rapid.SliceOfN(rapid.SliceOfN(rapid.Float64Range(-100, 100), 1, 8), 1, 6).Draw(rt, "groups")

		var (
			params []*tensor.Parameter
			flat   []float64
		)
		for _, g := range groups {
			params = append(params, &tensor.Parameter{Grad: tensor.FromSlice(g...)})
			flat = append(flat, g...)
		}

		norm, err := GradNorm(p, params...)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}

		expect := tensor.FromSlice(flat...).Norm(p)
		if math.Abs(norm-expect) > 1e-6*math.Max(1, expect) {
			rt.Fatalf("norm %v of partitioned gradients, expected %v", norm, expect)
		}
	})
}
