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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"d7y.io/trainkit/pkg/tensor"
)

const (
	// FileExt is the extension of checkpoint files.
	FileExt = "pth"

	// BestModelFileName is the file name of the best model.
	BestModelFileName = "best_model." + FileExt

	// tmpFileSuffix keeps unfinished writes invisible to the resume selector.
	tmpFileSuffix = ".tmp"
)

// Bundle keys.
const (
	KeyModel        = "model"
	KeyOptimizer    = "optimizer"
	KeyLRScheduler  = "lr_scheduler"
	KeyEpoch        = "epoch"
	KeyMaxAccuracy  = "max_accuracy"
	KeyConfig       = "config"
	KeyStateDictEMA = "state_dict_ema"
)

// Checkpoint is the bundle persisted to checkpoint files. Optional entries
// are nil when absent. Optimizer and scheduler state is written as nil
// rather than omitted so that an empty state stays distinguishable from none.
type Checkpoint struct {
	Model        tensor.StateDict `msgpack:"model"`
	Optimizer    []byte           `msgpack:"optimizer"`
	LRScheduler  []byte           `msgpack:"lr_scheduler"`
	Epoch        *int             `msgpack:"epoch,omitempty"`
	MaxAccuracy  *float64         `msgpack:"max_accuracy,omitempty"`
	Config       string           `msgpack:"config,omitempty"`
	StateDictEMA tensor.StateDict `msgpack:"state_dict_ema,omitempty"`
}

// Resumable reports whether optimizer, scheduler and epoch are all present.
func (c *Checkpoint) Resumable() bool {
	return c.Optimizer != nil && c.LRScheduler != nil && c.Epoch != nil
}

// ReadFile decodes the checkpoint stored at path.
func ReadFile(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ckpt := &Checkpoint{}
	if err := msgpack.NewDecoder(bufio.NewReader(f)).Decode(ckpt); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", path, err)
	}

	if ckpt.Model == nil {
		return nil, fmt.Errorf("checkpoint %s has no %s", path, KeyModel)
	}

	if err := ckpt.Model.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint %s %s: %w", path, KeyModel, err)
	}

	if err := ckpt.StateDictEMA.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint %s %s: %w", path, KeyStateDictEMA, err)
	}

	return ckpt, nil
}

// ReadKeys returns the top level keys of the checkpoint stored at path, keys
// holding nil are absent.
func ReadKeys(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var raw map[string]msgpack.RawMessage
	if err := msgpack.NewDecoder(bufio.NewReader(f)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", path, err)
	}

	keys := make([]string, 0, len(raw))
	for _, key := range []string{KeyModel, KeyOptimizer, KeyLRScheduler, KeyEpoch, KeyMaxAccuracy, KeyConfig, KeyStateDictEMA} {
		if value, ok := raw[key]; ok && !isNil(value) {
			keys = append(keys, key)
		}
		delete(raw, key)
	}

	// Keys written by other tools go last.
	extra := make([]string, 0, len(raw))
	for key, value := range raw {
		if !isNil(value) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)

	return append(keys, extra...), nil
}

func isNil(value msgpack.RawMessage) bool {
	return len(value) == 0 || (len(value) == 1 && value[0] == msgpcode.Nil)
}

// WriteFile encodes ckpt to path, replacing any previous file. The bundle is
// written to a temporary file in the same directory and renamed into place.
func WriteFile(path string, ckpt *Checkpoint) (int64, error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*"+tmpFileSuffix)
	if err != nil {
		return 0, err
	}

	size, err := write(f, ckpt)
	if err == nil {
		err = os.Rename(f.Name(), path)
	}

	if err != nil {
		os.Remove(f.Name())
		return 0, fmt.Errorf("write checkpoint %s: %w", path, err)
	}

	return size, nil
}

func write(f *os.File, ckpt *Checkpoint) (int64, error) {
	w := bufio.NewWriter(f)
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(ckpt); err != nil {
		f.Close()
		return 0, err
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return 0, err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return 0, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return 0, err
	}

	return info.Size(), f.Close()
}
