/*
 *     Copyright 2020 The Dragonfly Authors
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

//go:generate mockgen -destination mocks/source_mock.go -source source.go -package mocks

package source

import (
	"context"
	"errors"
	"io"
	"strings"

	"d7y.io/trainkit/pkg/objectstorage"
)

const (
	// KindHTTPS is any path beginning with https.
	KindHTTPS = "https"

	// KindObjectStorage is a s3:// or oss:// url.
	KindObjectStorage = "objectstorage"

	// KindLocal is a path on the local filesystem.
	KindLocal = "local"
)

// ErrUnsupportedSource is returned when no client serves the source kind.
var ErrUnsupportedSource = errors.New("unsupported source")

// Response is the content of a remote checkpoint.
type Response struct {
	// Body must be closed by the caller.
	Body io.ReadCloser

	// ContentLength is -1 when unknown.
	ContentLength int64

	// Digest is the algorithm:encoded digest announced by the source, may be empty.
	Digest string
}

// ResourceClient supply apis that interact with the source.
type ResourceClient interface {
	// Download opens the content of rawURL.
	Download(ctx context.Context, rawURL string) (*Response, error)
}

// Resolver maps checkpoint locations to local files.
type Resolver interface {
	// Resolve returns a local path of raw, remote sources are downloaded into
	// the cache once and reused afterwards.
	Resolve(ctx context.Context, raw string) (string, error)
}

// Kind returns the kind of checkpoint location.
func Kind(raw string) string {
	switch {
	case strings.HasPrefix(raw, KindHTTPS):
		return KindHTTPS
	case objectstorage.IsURL(raw):
		return KindObjectStorage
	default:
		return KindLocal
	}
}
