/*
 *     Copyright 2022 The Dragonfly Authors
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

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"d7y.io/trainkit/trainer/checkpoint"
	"d7y.io/trainkit/trainer/config"
	"d7y.io/trainkit/trainer/storage"
)

func TestPrintRecords(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	err := printRecords(&buf, []storage.Record{
		{Epoch: 1, Kind: storage.KindEpoch, Path: "output/ckpt_epoch_1.pth", Size: 2048, MaxAccuracy: 12.5},
		{Epoch: 1, Kind: storage.KindBest, Path: "output/best_model.pth", Size: 1024, MaxAccuracy: 12.5},
	})
	assert.NoError(err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(lines, 3)
	assert.True(strings.HasPrefix(lines[0], "EPOCH"))
	assert.Contains(lines[1], "ckpt_epoch_1.pth")
	assert.Contains(lines[1], "2.048kB")
	assert.Contains(lines[2], "best")
}

func TestPrintSummary(t *testing.T) {
	assert := assert.New(t)
	epoch := 3
	accuracy := 80.25

	var buf bytes.Buffer
	printSummary(&buf, &checkpoint.Summary{
		Path:        "output/best_model.pth",
		Size:        1500,
		Keys:        []string{checkpoint.KeyModel, checkpoint.KeyEpoch, checkpoint.KeyMaxAccuracy},
		Epoch:       &epoch,
		MaxAccuracy: &accuracy,
		Tensors:     2,
		Parameters:  28288354,
	})

	assert.Equal(`Path: output/best_model.pth
Size: 1.5kB
Keys: model, epoch, max_accuracy
Epoch: 3
MaxAccuracy: 80.250
Tensors: 2
Parameters: 28.29M
`, buf.String())
}

func TestLogResumePlan(t *testing.T) {
	tests := []struct {
		name   string
		mock   func(t *testing.T, cfg *config.Config)
		expect func(t *testing.T, err error)
	}{
		{
			name: "auto resume with checkpoints",
			mock: func(t *testing.T, cfg *config.Config) {
				cfg.Train.AutoResume = true
				if err := os.WriteFile(filepath.Join(cfg.Output, "ckpt_epoch_0.pth"), nil, 0600); err != nil {
					t.Fatal(err)
				}
			},
			expect: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "auto resume without output directory",
			mock: func(t *testing.T, cfg *config.Config) {
				cfg.Train.AutoResume = true
				cfg.Output = filepath.Join(cfg.Output, "foo")
			},
			expect: func(t *testing.T, err error) {
				assert.True(t, os.IsNotExist(err))
			},
		},
		{
			name: "start from scratch",
			mock: func(t *testing.T, cfg *config.Config) {},
			expect: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Output = t.TempDir()
			tc.mock(t, cfg)
			tc.expect(t, logResumePlan(cfg))
		})
	}
}
