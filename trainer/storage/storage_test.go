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

package storage

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

var mockRecords = []Record{
	{
		Epoch:       0,
		Kind:        KindEpoch,
		Path:        "output/ckpt_epoch_0.pth",
		Size:        1024,
		MaxAccuracy: 10.5,
		CreatedAt:   1667893413000000000,
	},
	{
		Epoch:       0,
		Kind:        KindBest,
		Path:        "output/best_model.pth",
		Size:        512,
		MaxAccuracy: 10.5,
		CreatedAt:   1667893414000000000,
	},
}

func TestStorage_New(t *testing.T) {
	tests := []struct {
		name    string
		baseDir string
		expect  func(t *testing.T, s Storage)
	}{
		{
			name:    "new storage",
			baseDir: os.TempDir(),
			expect: func(t *testing.T, s Storage) {
				assert := assert.New(t)
				assert.Equal(reflect.TypeOf(s).Elem().Name(), "storage")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.expect(t, New(tc.baseDir))
		})
	}
}

func TestStorage_CreateRecord(t *testing.T) {
	tests := []struct {
		name   string
		mock   func(t *testing.T, s Storage, baseDir string)
		expect func(t *testing.T, s Storage, baseDir string)
	}{
		{
			name: "create records",
			mock: func(t *testing.T, s Storage, baseDir string) {},
			expect: func(t *testing.T, s Storage, baseDir string) {
				assert := assert.New(t)
				for _, record := range mockRecords {
					assert.NoError(s.CreateRecord(record))
				}

				records, err := s.ListRecord()
				assert.NoError(err)
				assert.Equal(mockRecords, records)
			},
		},
		{
			name: "base dir does not exist",
			mock: func(t *testing.T, s Storage, baseDir string) {
				s.(*storage).baseDir = filepath.Join(baseDir, "foo")
			},
			expect: func(t *testing.T, s Storage, baseDir string) {
				assert := assert.New(t)
				err := s.CreateRecord(mockRecords[0])
				assert.True(os.IsNotExist(err))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			baseDir := t.TempDir()
			s := New(baseDir)
			tc.mock(t, s, baseDir)
			tc.expect(t, s, baseDir)
		})
	}
}

func TestStorage_ListRecord(t *testing.T) {
	tests := []struct {
		name   string
		mock   func(t *testing.T, s Storage, baseDir string)
		expect func(t *testing.T, s Storage, baseDir string)
	}{
		{
			name: "empty csv file given",
			mock: func(t *testing.T, s Storage, baseDir string) {
				file, err := os.OpenFile(filepath.Join(baseDir, "history.csv"), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
				if err != nil {
					t.Fatal(err)
				}
				defer file.Close()
			},
			expect: func(t *testing.T, s Storage, baseDir string) {
				assert := assert.New(t)
				_, err := s.ListRecord()
				assert.EqualError(err, "empty csv file given")
			},
		},
		{
			name: "history file does not exist",
			mock: func(t *testing.T, s Storage, baseDir string) {},
			expect: func(t *testing.T, s Storage, baseDir string) {
				assert := assert.New(t)
				_, err := s.ListRecord()
				assert.True(os.IsNotExist(err))
			},
		},
		{
			name: "list records of history file",
			mock: func(t *testing.T, s Storage, baseDir string) {
				if err := s.CreateRecord(mockRecords[1]); err != nil {
					t.Fatal(err)
				}
			},
			expect: func(t *testing.T, s Storage, baseDir string) {
				assert := assert.New(t)
				records, err := s.ListRecord()
				assert.NoError(err)
				assert.Equal(1, len(records))
				assert.Equal(mockRecords[1], records[0])
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			baseDir := t.TempDir()
			s := New(baseDir)
			tc.mock(t, s, baseDir)
			tc.expect(t, s, baseDir)
		})
	}
}

func TestStorage_OpenRecord(t *testing.T) {
	assert := assert.New(t)
	s := New(t.TempDir())

	_, err := s.OpenRecord()
	assert.True(os.IsNotExist(err))

	assert.NoError(s.CreateRecord(mockRecords[0]))
	rc, err := s.OpenRecord()
	assert.NoError(err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	assert.NoError(err)
	assert.Equal("0,epoch,output/ckpt_epoch_0.pth,1024,10.5,1667893413000000000\n", string(data))
}

func TestStorage_ClearRecord(t *testing.T) {
	assert := assert.New(t)
	baseDir := t.TempDir()
	s := New(baseDir)

	assert.NoError(s.ClearRecord())
	assert.NoError(s.CreateRecord(mockRecords[0]))
	assert.FileExists(filepath.Join(baseDir, "history.csv"))
	assert.NoError(s.ClearRecord())
	assert.NoFileExists(filepath.Join(baseDir, "history.csv"))
}
