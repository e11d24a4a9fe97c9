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

package checkpoint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vmihailenco/msgpack/v5"

	"d7y.io/trainkit/pkg/tensor"
)

func TestCheckpoint_WriteFile(t *testing.T) {
	epoch := 0
	accuracy := 81.2

	tests := []struct {
		name   string
		ckpt   *Checkpoint
		expect func(t *testing.T, ckpt *Checkpoint, keys []string)
	}{
		{
			name: "best model",
			ckpt: &Checkpoint{
				Model:       tensor.StateDict{"layer.weight": tensor.FromSlice(1, 2)},
				Epoch:       &epoch,
				MaxAccuracy: &accuracy,
				Config:      "output: output\n",
			},
			expect: func(t *testing.T, ckpt *Checkpoint, keys []string) {
				assert := assert.New(t)
				assert.Equal([]string{KeyModel, KeyEpoch, KeyMaxAccuracy, KeyConfig}, keys)
				assert.False(ckpt.Resumable())
				assert.Equal(0, *ckpt.Epoch)
				assert.Equal(81.2, *ckpt.MaxAccuracy)
				assert.Nil(ckpt.StateDictEMA)
			},
		},
		{
			name: "resumable checkpoint",
			ckpt: &Checkpoint{
				Model:       tensor.StateDict{"layer.weight": tensor.FromSlice(1, 2)},
				Optimizer:   []byte("adamw"),
				LRScheduler: []byte("cosine"),
				Epoch:       &epoch,
			},
			expect: func(t *testing.T, ckpt *Checkpoint, keys []string) {
				assert := assert.New(t)
				assert.Equal([]string{KeyModel, KeyOptimizer, KeyLRScheduler, KeyEpoch}, keys)
				assert.True(ckpt.Resumable())
				assert.Nil(ckpt.MaxAccuracy)
			},
		},
		{
			name: "weights only",
			ckpt: &Checkpoint{
				Model:        tensor.StateDict{"layer.weight": tensor.FromSlice(1, 2)},
				StateDictEMA: tensor.StateDict{"layer.weight": tensor.FromSlice(3, 4)},
			},
			expect: func(t *testing.T, ckpt *Checkpoint, keys []string) {
				assert := assert.New(t)
				assert.Equal([]string{KeyModel, KeyStateDictEMA}, keys)
				assert.Nil(ckpt.Epoch)
				assert.True(tensor.FromSlice(3, 4).Equal(ckpt.StateDictEMA["layer.weight"]))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "model.pth")
			size, err := WriteFile(path, tc.ckpt)
			if err != nil {
				t.Fatal(err)
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			assert.Equal(t, info.Size(), size)

			ckpt, err := ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			keys, err := ReadKeys(path)
			if err != nil {
				t.Fatal(err)
			}

			tc.expect(t, ckpt, keys)
		})
	}
}

func TestCheckpoint_WriteFileReplaces(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, BestModelFileName)

	first, second := 1.0, 2.0
	_, err := WriteFile(path, &Checkpoint{Model: tensor.StateDict{"w": tensor.FromSlice(1)}, MaxAccuracy: &first})
	assert.NoError(err)
	_, err = WriteFile(path, &Checkpoint{Model: tensor.StateDict{"w": tensor.FromSlice(1)}, MaxAccuracy: &second})
	assert.NoError(err)

	ckpt, err := ReadFile(path)
	assert.NoError(err)
	assert.Equal(2.0, *ckpt.MaxAccuracy)

	entries, err := os.ReadDir(dir)
	assert.NoError(err)
	assert.Len(entries, 1)
}

func TestCheckpoint_WriteFileFailed(t *testing.T) {
	assert := assert.New(t)
	_, err := WriteFile(filepath.Join(t.TempDir(), "foo", BestModelFileName), &Checkpoint{Model: tensor.StateDict{"w": tensor.FromSlice(1)}})
	assert.True(os.IsNotExist(err))
}

func TestCheckpoint_ReadFile(t *testing.T) {
	tests := []struct {
		name   string
		data   func(t *testing.T) []byte
		expect func(t *testing.T, ckpt *Checkpoint, err error)
	}{
		{
			name: "not a checkpoint",
			data: func(t *testing.T) []byte {
				return []byte("not msgpack")
			},
			expect: func(t *testing.T, ckpt *Checkpoint, err error) {
				assert := assert.New(t)
				assert.Error(err)
				assert.True(strings.HasPrefix(err.Error(), "decode checkpoint"))
				assert.Nil(ckpt)
			},
		},
		{
			name: "model missing",
			data: func(t *testing.T) []byte {
				data, err := msgpack.Marshal(map[string]int{KeyEpoch: 1})
				if err != nil {
					t.Fatal(err)
				}

				return data
			},
			expect: func(t *testing.T, ckpt *Checkpoint, err error) {
				assert := assert.New(t)
				assert.Error(err)
				assert.True(strings.HasSuffix(err.Error(), "has no model"))
			},
		},
		{
			name: "nil model tensor",
			data: func(t *testing.T) []byte {
				data, err := msgpack.Marshal(map[string]interface{}{
					KeyModel: map[string]interface{}{"head.bias": nil},
				})
				if err != nil {
					t.Fatal(err)
				}

				return data
			},
			expect: func(t *testing.T, ckpt *Checkpoint, err error) {
				assert := assert.New(t)
				assert.Error(err)
				assert.True(strings.HasSuffix(err.Error(), "model: tensor head.bias is nil"))
				assert.Nil(ckpt)
			},
		},
		{
			name: "nil ema tensor",
			data: func(t *testing.T) []byte {
				data, err := msgpack.Marshal(map[string]interface{}{
					KeyModel:        map[string]interface{}{},
					KeyStateDictEMA: map[string]interface{}{"layer.weight": nil},
				})
				if err != nil {
					t.Fatal(err)
				}

				return data
			},
			expect: func(t *testing.T, ckpt *Checkpoint, err error) {
				assert := assert.New(t)
				assert.Error(err)
				assert.True(strings.HasSuffix(err.Error(), "state_dict_ema: tensor layer.weight is nil"))
				assert.Nil(ckpt)
			},
		},
		{
			name: "values do not match shape",
			data: func(t *testing.T) []byte {
				data, err := msgpack.Marshal(map[string]interface{}{
					KeyModel: map[string]interface{}{"w": map[string]interface{}{"shape": []int{4}, "data": []float64{9}}},
				})
				if err != nil {
					t.Fatal(err)
				}

				return data
			},
			expect: func(t *testing.T, ckpt *Checkpoint, err error) {
				assert := assert.New(t)
				assert.Error(err)
				assert.True(strings.HasSuffix(err.Error(), "model: tensor w: shape [4] requires 4 values, got 1"))
				assert.Nil(ckpt)
			},
		},
		{
			name: "foreign keys are ignored",
			data: func(t *testing.T) []byte {
				data, err := msgpack.Marshal(map[string]interface{}{
					"zeta":   1,
					KeyModel: map[string]interface{}{"w": map[string]interface{}{"shape": []int{1}, "data": []float64{1}}},
					"alpha":  1,
				})
				if err != nil {
					t.Fatal(err)
				}

				return data
			},
			expect: func(t *testing.T, ckpt *Checkpoint, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal([]float64{1}, ckpt.Model["w"].Data)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model.pth")
			if err := os.WriteFile(path, tc.data(t), 0600); err != nil {
				t.Fatal(err)
			}

			ckpt, err := ReadFile(path)
			tc.expect(t, ckpt, err)
		})
	}
}

func TestCheckpoint_ReadKeysForeign(t *testing.T) {
	assert := assert.New(t)
	data, err := msgpack.Marshal(map[string]interface{}{
		"zeta":   1,
		KeyEpoch: 2,
		KeyModel: map[string]interface{}{},
		"alpha":  1,
	})
	assert.NoError(err)

	path := filepath.Join(t.TempDir(), "model.pth")
	assert.NoError(os.WriteFile(path, data, 0600))

	keys, err := ReadKeys(path)
	assert.NoError(err)
	assert.Equal([]string{KeyModel, KeyEpoch, "alpha", "zeta"}, keys)
}
