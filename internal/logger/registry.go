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

package logger

import (
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Registry hands out one logger per output directory and name. It is owned
// by the start-up routine and passed to the components that log.
type Registry struct {
	mu      sync.Mutex
	rotate  LogRotateConfig
	level   zap.AtomicLevel
	entries map[registryKey]*registryEntry

	// open is replaced in tests to observe file opens.
	open func(filePath string, rotate LogRotateConfig) (zapcore.WriteSyncer, func() error, error)
}

type registryKey struct {
	dir  string
	name string
}

type registryEntry struct {
	logger *zap.SugaredLogger
	close  func() error
}

// RegistryOption is a functional option for configuring the registry.
type RegistryOption func(r *Registry)

// WithRotate enables rotation of registry log files.
func WithRotate(rotate LogRotateConfig) RegistryOption {
	return func(r *Registry) {
		r.rotate = rotate
	}
}

// WithLevel sets the minimum level of registry loggers.
func WithLevel(level zapcore.Level) RegistryOption {
	return func(r *Registry) {
		r.level.SetLevel(level)
	}
}

// NewRegistry returns an empty registry logging at debug level.
func NewRegistry(options ...RegistryOption) *Registry {
	r := &Registry{
		level:   zap.NewAtomicLevelAt(zapcore.DebugLevel),
		entries: map[registryKey]*registryEntry{},
		open:    openSyncer,
	}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// Get returns the logger of outputDir and name. The first call for a key
// opens outputDir/log_file.txt for appending, later calls return the same
// logger. outputDir must already exist.
func (r *Registry) Get(outputDir, name string) (*zap.SugaredLogger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey{dir: outputDir, name: name}
	if entry, ok := r.entries[key]; ok {
		return entry.logger, nil
	}

	syncer, closeFunc, err := r.open(filepath.Join(outputDir, LogFileName), r.rotate)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(
		newEncoder(),
		syncer,
		r.level,
	)

	log := zap.New(core, zap.AddCaller()).Named(name).Sugar()
	r.entries[key] = &registryEntry{
		logger: log,
		close:  closeFunc,
	}

	return log, nil
}

// Len returns the number of loggers created so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// Close flushes and closes every logger file. The registry is empty afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs *multierror.Error
	for key, entry := range r.entries {
		// Sync errors are ignored, only close errors are returned.
		_ = entry.logger.Sync()
		if err := entry.close(); err != nil {
			errs = multierror.Append(errs, err)
		}

		delete(r.entries, key)
	}

	return errs.ErrorOrNil()
}
