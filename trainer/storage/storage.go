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

//go:generate mockgen -destination mocks/storage_mock.go -source storage.go -package mocks

package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
)

const (
	// HistoryFilePrefix is prefix of history file name.
	HistoryFilePrefix = "history"

	// CSVFileExt is extension of file name.
	CSVFileExt = "csv"
)

const (
	// KindBest is the record kind of best model checkpoints.
	KindBest = "best"

	// KindEpoch is the record kind of resumable epoch checkpoints.
	KindEpoch = "epoch"
)

// Record is a checkpoint written to the output directory.
type Record struct {
	// Epoch is the epoch the checkpoint was written at.
	Epoch int `csv:"epoch"`

	// Kind is best or epoch.
	Kind string `csv:"kind"`

	// Path is the checkpoint file.
	Path string `csv:"path"`

	// Size is the checkpoint size in bytes.
	Size int64 `csv:"size"`

	// MaxAccuracy is the best accuracy when the checkpoint was written.
	MaxAccuracy float64 `csv:"maxAccuracy"`

	// CreatedAt is the unix nano time of the write.
	CreatedAt int64 `csv:"createdAt"`
}

// Storage is the interface used for checkpoint history.
type Storage interface {
	// CreateRecord appends a record to the history file.
	CreateRecord(Record) error

	// ListRecord returns records of the history file in write order.
	ListRecord() ([]Record, error)

	// OpenRecord opens the history file for read.
	OpenRecord() (io.ReadCloser, error)

	// ClearRecord removes the history file.
	ClearRecord() error
}

type storage struct {
	baseDir string
	mu      *sync.RWMutex
}

// New returns a new Storage instance.
func New(baseDir string) Storage {
	return &storage{
		baseDir: baseDir,
		mu:      &sync.RWMutex{},
	}
}

// CreateRecord appends a record to the history file.
func (s *storage) CreateRecord(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.historyFilename(), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	return gocsv.MarshalWithoutHeaders([]Record{record}, file)
}

// ListRecord returns records of the history file in write order.
func (s *storage) ListRecord() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := os.Open(s.historyFilename())
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []Record
	if err := gocsv.UnmarshalWithoutHeaders(file, &records); err != nil {
		return nil, err
	}

	return records, nil
}

// OpenRecord opens the history file for read.
func (s *storage) OpenRecord() (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return os.Open(s.historyFilename())
}

// ClearRecord removes the history file.
func (s *storage) ClearRecord() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.historyFilename()); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

// historyFilename generates history file name.
func (s *storage) historyFilename() string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s.%s", HistoryFilePrefix, CSVFileExt))
}
