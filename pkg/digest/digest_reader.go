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
	"fmt"
	"io"

	"github.com/opencontainers/go-digest"
)

// Reader is the interface used for reading resource.
type Reader interface {
	io.Reader
	Digest() digest.Digest
}

// reader computes the sha256 digest of the stream and validates it on EOF.
type reader struct {
	r        io.Reader
	prefix   string
	expected digest.Digest
	digester digest.Digester
}

// Option is a functional option for digest reader.
type Option func(reader *reader)

// WithPrefix sets the encoded prefix to be verified.
func WithPrefix(prefix string) Option {
	return func(reader *reader) {
		reader.prefix = prefix
	}
}

// WithDigest sets the full digest to be verified.
func WithDigest(d digest.Digest) Option {
	return func(reader *reader) {
		reader.expected = d
	}
}

// NewReader creates digest reader.
func NewReader(r io.Reader, options ...Option) Reader {
	reader := &reader{
		r:        r,
		digester: digest.SHA256.Digester(),
	}

	for _, opt := range options {
		opt(reader)
	}

	return reader
}

// Read uses to read content and validate digest.
func (r *reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF {
		return n, err
	}

	if n > 0 {
		r.digester.Hash().Write(p[:n])
	}

	if err == io.EOF {
		d := r.digester.Digest()
		if r.expected != "" && r.expected != d {
			return n, fmt.Errorf("expected %s, got %s: %w", r.expected, d, ErrDigestMismatch)
		}

		if r.prefix != "" && !MatchPrefix(d, r.prefix) {
			return n, fmt.Errorf("expected prefix %s, got %s: %w", r.prefix, d, ErrDigestMismatch)
		}
	}

	return n, err
}

// Digest returns the digest of the content read so far.
func (r *reader) Digest() digest.Digest {
	return r.digester.Digest()
}
