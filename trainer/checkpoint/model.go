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

//go:generate mockgen -destination mocks/model_mock.go -source model.go -package mocks

package checkpoint

import (
	"encoding"

	"d7y.io/trainkit/pkg/tensor"
)

// Model is a trainable model whose parameters are addressed by name.
type Model interface {
	// StateDict returns the live parameter tensors, mutating a returned
	// tensor mutates the model.
	StateDict() tensor.StateDict

	// LoadStateDict copies the given tensors into the model parameters of the
	// same name.
	LoadStateDict(tensor.StateDict) error
}

// Optimizer state is opaque to the store.
type Optimizer interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// Scheduler is a learning rate scheduler, its state is opaque to the store.
type Scheduler interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// Accelerator releases device memory held by the compute backend.
type Accelerator interface {
	EmptyCache()
}

type noopAccelerator struct{}

func (noopAccelerator) EmptyCache() {}
