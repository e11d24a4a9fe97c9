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

package resume

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	pkgmath "d7y.io/trainkit/pkg/math"
	"d7y.io/trainkit/pkg/slices"
	"d7y.io/trainkit/trainer/checkpoint"
)

type candidate struct {
	name    string
	modTime time.Time
}

// FindLatest returns the checkpoint in outputDir with the most recent
// modification time. Only entries directly in outputDir whose name ends in
// pth are considered, ok is false when there is none.
func FindLatest(outputDir string) (string, bool, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", false, err
	}

	entries = slices.Filter(entries, func(entry os.DirEntry) bool {
		return !entry.IsDir() && strings.HasSuffix(entry.Name(), checkpoint.FileExt)
	})

	candidates := make([]candidate, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			// Removed between listing and stat.
			if os.IsNotExist(err) {
				continue
			}

			return "", false, err
		}

		candidates = append(candidates, candidate{name: entry.Name(), modTime: info.ModTime()})
	}

	latest, ok := pkgmath.MaxBy(candidates, func(c candidate) int64 {
		return c.modTime.UnixNano()
	})
	if !ok {
		return "", false, nil
	}

	return filepath.Join(outputDir, latest.name), true, nil
}
