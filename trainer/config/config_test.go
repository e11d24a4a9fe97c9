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

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var (
	mockObjectStorageConfig = ObjectStorageConfig{
		Enable:    true,
		Name:      ObjectStorageS3,
		Region:    "us-east-1",
		Endpoint:  "127.0.0.1:9000",
		AccessKey: "foo",
		SecretKey: "bar",
		Bucket:    "models",
		Upload:    true,
	}

	mockMetricsConfig = MetricsConfig{
		Enable: true,
		Addr:   DefaultMetricsAddr,
	}
)

func TestConfig_Load(t *testing.T) {
	config := &Config{
		Output:   "foo",
		EvalMode: true,
		Model: ModelConfig{
			Name:       "swin_tiny",
			Resume:     "https://example.com/swin_tiny-0a1b2c3d.pth",
			Pretrained: "bar",
		},
		Train: TrainConfig{
			StartEpoch: 2,
			Epochs:     30,
			AutoResume: true,
		},
		Log: LogConfig{
			Dir:        "baz",
			Console:    true,
			Verbose:    true,
			MaxSize:    512,
			MaxAge:     5,
			MaxBackups: 3,
		},
		Cache: CacheConfig{
			Dir:       "qux",
			CheckHash: true,
			Progress:  false,
			Timeout:   10 * time.Minute,
		},
		ObjectStorage: mockObjectStorageConfig,
		Metrics: MetricsConfig{
			Enable: false,
			Addr:   ":8000",
		},
	}

	trainerConfigYAML := &Config{}
	contentYAML, _ := os.ReadFile("./testdata/trainer.yaml")
	if err := yaml.Unmarshal(contentYAML, &trainerConfigYAML); err != nil {
		t.Fatal(err)
	}
	assert := assert.New(t)
	assert.EqualValues(config, trainerConfigYAML)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		mock   func(cfg *Config)
		expect func(t *testing.T, err error)
	}{
		{
			name:   "valid config",
			config: New(),
			mock:   func(cfg *Config) {},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.NoError(err)
			},
		},
		{
			name:   "config requires parameter output",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Output = ""
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "config requires parameter output")
			},
		},
		{
			name:   "train requires parameter startEpoch",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Train.StartEpoch = -1
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "train requires parameter startEpoch greater than or equal to 0")
			},
		},
		{
			name:   "train requires parameter epochs",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Train.Epochs = 0
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "train requires parameter epochs")
			},
		},
		{
			name:   "log requires parameter maxSize",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Log.MaxSize = -1
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "log requires parameter maxSize greater than or equal to 0")
			},
		},
		{
			name:   "cache requires parameter dir",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Cache.Dir = ""
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "cache requires parameter dir")
			},
		},
		{
			name:   "objectStorage requires parameter name",
			config: New(),
			mock: func(cfg *Config) {
				cfg.ObjectStorage = mockObjectStorageConfig
				cfg.ObjectStorage.Name = "obs"
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "objectStorage requires parameter name")
			},
		},
		{
			name:   "objectStorage requires parameter endpoint",
			config: New(),
			mock: func(cfg *Config) {
				cfg.ObjectStorage = mockObjectStorageConfig
				cfg.ObjectStorage.Endpoint = ""
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "objectStorage requires parameter endpoint")
			},
		},
		{
			name:   "objectStorage requires parameter bucket",
			config: New(),
			mock: func(cfg *Config) {
				cfg.ObjectStorage = mockObjectStorageConfig
				cfg.ObjectStorage.Bucket = ""
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "objectStorage requires parameter bucket")
			},
		},
		{
			name:   "metrics requires parameter addr",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Metrics = mockMetricsConfig
				cfg.Metrics.Addr = ""
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "metrics requires parameter addr")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.config.Convert(); err != nil {
				t.Fatal(err)
			}

			tc.mock(tc.config)
			tc.expect(t, tc.config.Validate())
		})
	}
}

func TestConfig_Convert(t *testing.T) {
	assert := assert.New(t)

	cfg := New()
	cfg.Output = "foo"
	cfg.Cache.Dir = "bar"
	assert.NoError(cfg.Convert())
	assert.Equal("foo", cfg.Log.Dir)
	assert.Equal("bar", cfg.Cache.Dir)
}

func TestConfig_WithStartEpoch(t *testing.T) {
	assert := assert.New(t)

	cfg := New()
	resumed := cfg.WithStartEpoch(11)
	assert.Equal(0, cfg.Train.StartEpoch)
	assert.Equal(11, resumed.Train.StartEpoch)
	assert.NotSame(cfg, resumed)

	moved := resumed.WithResume("output/ckpt_epoch_10.pth")
	assert.Equal("", resumed.Model.Resume)
	assert.Equal("output/ckpt_epoch_10.pth", moved.Model.Resume)
	assert.Equal(11, moved.Train.StartEpoch)
}

func TestConfig_Snapshot(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	cfg := New()
	cfg.ObjectStorage = mockObjectStorageConfig
	data, err := cfg.Snapshot()
	require.NoError(err)
	assert.NotContains(string(data), "secretKey: bar")

	parsed, err := ParseSnapshot(data)
	require.NoError(err)
	assert.Equal(redacted, parsed.ObjectStorage.SecretKey)
	assert.Equal(redacted, parsed.ObjectStorage.AccessKey)
	assert.Equal(cfg.Train, parsed.Train)
	assert.Equal("foo", cfg.ObjectStorage.AccessKey)

	_, err = ParseSnapshot([]byte("train: ["))
	assert.Error(err)
}
