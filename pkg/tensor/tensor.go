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

package tensor

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ErrShapeMismatch is returned when two tensors of different shapes are combined.
var ErrShapeMismatch = errors.New("tensor shape mismatch")

// Tensor is a dense row-major tensor of float64 values.
type Tensor struct {
	// Shape is the size of every dimension.
	Shape []int `msgpack:"shape"`

	// Data holds the values, its length is the product of Shape.
	Data []float64 `msgpack:"data"`
}

// New returns a tensor of the given shape backed by data.
func New(shape []int, data []float64) (*Tensor, error) {
	t := &Tensor{Shape: append([]int(nil), shape...), Data: data}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

// Validate returns an error when the number of values does not match the shape.
func (t *Tensor) Validate() error {
	for _, d := range t.Shape {
		if d < 0 {
			return fmt.Errorf("shape %v has negative dimension", t.Shape)
		}
	}

	if n := numel(t.Shape); n != len(t.Data) {
		return fmt.Errorf("shape %v requires %d values, got %d", t.Shape, n, len(t.Data))
	}

	return nil
}

// FromSlice returns a one dimensional tensor holding values.
func FromSlice(values ...float64) *Tensor {
	return &Tensor{Shape: []int{len(values)}, Data: values}
}

// Numel returns the number of elements.
func (t *Tensor) Numel() int {
	return len(t.Data)
}

// SameShape reports whether t and o have identical shapes.
func (t *Tensor) SameShape(o *Tensor) bool {
	if len(t.Shape) != len(o.Shape) {
		return false
	}

	for i := range t.Shape {
		if t.Shape[i] != o.Shape[i] {
			return false
		}
	}

	return true
}

// CopyFrom overwrites the values of t with the values of src in place.
func (t *Tensor) CopyFrom(src *Tensor) error {
	if !t.SameShape(src) || len(t.Data) != len(src.Data) {
		return fmt.Errorf("copy %v into %v: %w", src.Shape, t.Shape, ErrShapeMismatch)
	}

	copy(t.Data, src.Data)
	return nil
}

// Norm returns the L-p norm of the flattened tensor, p may be math.Inf(1).
func (t *Tensor) Norm(p float64) float64 {
	if len(t.Data) == 0 {
		return 0
	}

	return floats.Norm(t.Data, p)
}

// Equal reports whether t and o hold the same shape and values.
func (t *Tensor) Equal(o *Tensor) bool {
	return t.SameShape(o) && floats.Equal(t.Data, o.Data)
}

// StateDict maps parameter names to tensors.
type StateDict map[string]*Tensor

// Keys returns the parameter names in lexical order.
func (sd StateDict) Keys() []string {
	keys := make([]string, 0, len(sd))
	for key := range sd {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

// Numel returns the total number of elements across all tensors.
func (sd StateDict) Numel() int {
	var n int
	for _, t := range sd {
		n += t.Numel()
	}

	return n
}

// Validate returns an error when a tensor is nil or holds a number of values
// that does not match its shape.
func (sd StateDict) Validate() error {
	for _, key := range sd.Keys() {
		t := sd[key]
		if t == nil {
			return fmt.Errorf("tensor %s is nil", key)
		}

		if err := t.Validate(); err != nil {
			return fmt.Errorf("tensor %s: %w", key, err)
		}
	}

	return nil
}

// Parameter is a named trainable tensor with its gradient.
type Parameter struct {
	Name string

	Value *Tensor

	// Grad is nil when no gradient has been attached.
	Grad *Tensor
}

func numel(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}

	return n
}
