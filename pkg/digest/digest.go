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

package digest

import (
	"bufio"
	_ "crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/opencontainers/go-digest"
)

// ErrDigestMismatch is returned when content does not match the expected digest.
var ErrDigestMismatch = errors.New("digest mismatch")

// hashPrefixRegexp matches the hash prefix embedded in published checkpoint
// names, e.g. swin_tiny_patch4_window7_224-0a1b2c3d.pth.
var hashPrefixRegexp = regexp.MustCompile(`-([a-f0-9]*)\.`)

// HashPrefix returns the hex prefix of the sha256 digest embedded in the
// file name, or an empty string.
func HashPrefix(filename string) string {
	matches := hashPrefixRegexp.FindStringSubmatch(filepath.Base(filename))
	if len(matches) != 2 {
		return ""
	}

	return matches[1]
}

// MatchPrefix reports whether d is a sha256 digest whose encoded value starts with prefix.
func MatchPrefix(d digest.Digest, prefix string) bool {
	return d.Algorithm() == digest.SHA256 && strings.HasPrefix(d.Encoded(), prefix)
}

// HashFile computes the sha256 digest of the file.
func HashFile(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return digest.SHA256.FromReader(bufio.NewReader(f))
}

// Parse parses a digest in algorithm:encoded form.
func Parse(s string) (digest.Digest, error) {
	d, err := digest.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("parse digest %q: %w", s, err)
	}

	return d, nil
}
