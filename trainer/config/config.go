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
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"d7y.io/trainkit/pkg/slices"
)

type Config struct {
	// Output is the directory of checkpoints and the log file.
	Output string `yaml:"output" mapstructure:"output"`

	// EvalMode only restores weights, training state is never resumed.
	EvalMode bool `yaml:"evalMode" mapstructure:"evalMode"`

	// Model configuration.
	Model ModelConfig `yaml:"model" mapstructure:"model"`

	// Train configuration.
	Train TrainConfig `yaml:"train" mapstructure:"train"`

	// Log configuration.
	Log LogConfig `yaml:"log" mapstructure:"log"`

	// Cache configuration.
	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`

	// ObjectStorage configuration.
	ObjectStorage ObjectStorageConfig `yaml:"objectStorage" mapstructure:"objectStorage"`

	// Metrics configuration.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

type ModelConfig struct {
	// Name is the model name, used as the logger name.
	Name string `yaml:"name" mapstructure:"name"`

	// Resume is a local path, https url or object storage url of the checkpoint to resume from.
	Resume string `yaml:"resume" mapstructure:"resume"`

	// Pretrained is the checkpoint whose ema weights are loaded for finetuning.
	Pretrained string `yaml:"pretrained" mapstructure:"pretrained"`
}

type TrainConfig struct {
	// StartEpoch is the first epoch to run.
	StartEpoch int `yaml:"startEpoch" mapstructure:"startEpoch"`

	// Epochs is the number of epochs to run.
	Epochs int `yaml:"epochs" mapstructure:"epochs"`

	// AutoResume resumes from the latest checkpoint in the output directory.
	AutoResume bool `yaml:"autoResume" mapstructure:"autoResume"`
}

type LogConfig struct {
	// Dir is the directory of the core log, defaults to output.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Console logs to stdout instead of files.
	Console bool `yaml:"console" mapstructure:"console"`

	// Verbose enables debug logs.
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`

	// Maximum size in megabytes of log files before rotation, 0 disables rotation.
	MaxSize int `yaml:"maxSize" mapstructure:"maxSize"`

	// Maximum number of days to retain old log files.
	MaxAge int `yaml:"maxAge" mapstructure:"maxAge"`

	// Maximum number of old log files to keep.
	MaxBackups int `yaml:"maxBackups" mapstructure:"maxBackups"`
}

type CacheConfig struct {
	// Dir stores downloaded checkpoints.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// CheckHash verifies downloaded files against the hash prefix in their name.
	CheckHash bool `yaml:"checkHash" mapstructure:"checkHash"`

	// Progress shows a progress bar while downloading.
	Progress bool `yaml:"progress" mapstructure:"progress"`

	// Timeout of a single download.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type ObjectStorageConfig struct {
	// Enable object storage sources and uploads.
	Enable bool `yaml:"enable" mapstructure:"enable"`

	// Name is s3 or oss.
	Name string `yaml:"name" mapstructure:"name"`

	// Region is storage region.
	Region string `yaml:"region" mapstructure:"region"`

	// Endpoint is datacenter endpoint.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	// AccessKey is access key ID.
	AccessKey string `yaml:"accessKey" mapstructure:"accessKey"`

	// SecretKey is access key secret.
	SecretKey string `yaml:"secretKey" mapstructure:"secretKey"`

	// Bucket receives uploaded best models.
	Bucket string `yaml:"bucket" mapstructure:"bucket"`

	// Upload pushes every best model to the bucket.
	Upload bool `yaml:"upload" mapstructure:"upload"`
}

type MetricsConfig struct {
	// Enable metrics service.
	Enable bool `yaml:"enable" mapstructure:"enable"`

	// Metrics service address.
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// New default configuration.
func New() *Config {
	return &Config{
		Output: DefaultOutput,
		Train: TrainConfig{
			Epochs: DefaultTrainEpochs,
		},
		Log: LogConfig{
			MaxSize:    DefaultLogRotateMaxSize,
			MaxAge:     DefaultLogRotateMaxAge,
			MaxBackups: DefaultLogRotateMaxBackups,
		},
		Cache: CacheConfig{
			CheckHash: true,
			Progress:  true,
			Timeout:   DefaultDownloadTimeout,
		},
		Metrics: MetricsConfig{
			Enable: false,
			Addr:   DefaultMetricsAddr,
		},
	}
}

// Validate config parameters.
func (cfg *Config) Validate() error {
	if cfg.Output == "" {
		return errors.New("config requires parameter output")
	}

	if cfg.Train.StartEpoch < 0 {
		return errors.New("train requires parameter startEpoch greater than or equal to 0")
	}

	if cfg.Train.Epochs <= 0 {
		return errors.New("train requires parameter epochs")
	}

	if cfg.Log.MaxSize < 0 {
		return errors.New("log requires parameter maxSize greater than or equal to 0")
	}

	if cfg.Cache.Dir == "" {
		return errors.New("cache requires parameter dir")
	}

	if cfg.ObjectStorage.Enable {
		if !slices.Contains([]string{ObjectStorageS3, ObjectStorageOSS}, cfg.ObjectStorage.Name) {
			return errors.New("objectStorage requires parameter name")
		}

		if cfg.ObjectStorage.Endpoint == "" {
			return errors.New("objectStorage requires parameter endpoint")
		}

		if cfg.ObjectStorage.Upload && cfg.ObjectStorage.Bucket == "" {
			return errors.New("objectStorage requires parameter bucket")
		}
	}

	if cfg.Metrics.Enable {
		if cfg.Metrics.Addr == "" {
			return errors.New("metrics requires parameter addr")
		}
	}

	return nil
}

// Convert fills the directories derived from other parameters.
func (cfg *Config) Convert() error {
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = cfg.Output
	}

	if cfg.Cache.Dir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}

		cfg.Cache.Dir = filepath.Join(dir, DefaultCacheDirName)
	}

	return nil
}

// WithStartEpoch returns a copy of the config starting at epoch.
func (cfg *Config) WithStartEpoch(epoch int) *Config {
	c := *cfg
	c.Train.StartEpoch = epoch
	return &c
}

// WithResume returns a copy of the config resuming from path.
func (cfg *Config) WithResume(path string) *Config {
	c := *cfg
	c.Model.Resume = path
	return &c
}

// Snapshot returns the config as YAML with secrets redacted, it is stored
// inside checkpoints.
func (cfg *Config) Snapshot() ([]byte, error) {
	c := *cfg
	if c.ObjectStorage.AccessKey != "" {
		c.ObjectStorage.AccessKey = redacted
	}

	if c.ObjectStorage.SecretKey != "" {
		c.ObjectStorage.SecretKey = redacted
	}

	return yaml.Marshal(&c)
}

// ParseSnapshot decodes a config snapshot stored inside a checkpoint.
func ParseSnapshot(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
