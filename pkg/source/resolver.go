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

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/gofrs/flock"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"d7y.io/trainkit/pkg/digest"
	"d7y.io/trainkit/pkg/objectstorage"
)

const (
	// lockRetryDelay is the interval between attempts to lock a cache entry.
	lockRetryDelay = 100 * time.Millisecond

	lockSuffix    = ".lock"
	partialSuffix = ".partial"
)

type resolver struct {
	cacheDir  string
	clients   map[string]ResourceClient
	checkHash bool
	progress  io.Writer
	timeout   time.Duration
	log       *zap.SugaredLogger

	// group collapses concurrent downloads of the same cache entry, the file
	// lock only guards against other processes.
	group singleflight.Group
}

// Option is a functional option for configuring the resolver.
type Option func(r *resolver)

// WithHTTPClient sets the http client of https sources.
func WithHTTPClient(client *http.Client) Option {
	return func(r *resolver) {
		r.clients[KindHTTPS] = NewHTTPClient(client)
	}
}

// WithObjectStorage enables s3:// and oss:// sources.
func WithObjectStorage(storage objectstorage.ObjectStorage) Option {
	return func(r *resolver) {
		r.clients[KindObjectStorage] = NewObjectClient(storage)
	}
}

// WithResourceClient sets the client of a source kind.
func WithResourceClient(kind string, client ResourceClient) Option {
	return func(r *resolver) {
		r.clients[kind] = client
	}
}

// WithCheckHash verifies https downloads against the hash prefix in their file name.
func WithCheckHash(checkHash bool) Option {
	return func(r *resolver) {
		r.checkHash = checkHash
	}
}

// WithProgress renders a progress bar of downloads to w.
func WithProgress(w io.Writer) Option {
	return func(r *resolver) {
		r.progress = w
	}
}

// WithTimeout sets the timeout of a single download.
func WithTimeout(timeout time.Duration) Option {
	return func(r *resolver) {
		r.timeout = timeout
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(r *resolver) {
		r.log = log
	}
}

// New returns a resolver caching remote checkpoints under cacheDir.
func New(cacheDir string, options ...Option) Resolver {
	r := &resolver{
		cacheDir: cacheDir,
		clients: map[string]ResourceClient{
			KindHTTPS: NewHTTPClient(nil),
		},
		log: zap.NewNop().Sugar(),
	}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// Resolve returns a local path of raw.
func (r *resolver) Resolve(ctx context.Context, raw string) (string, error) {
	kind := Kind(raw)
	if kind == KindLocal {
		return raw, nil
	}

	client, ok := r.clients[kind]
	if !ok {
		return "", fmt.Errorf("%s: %w", raw, ErrUnsupportedSource)
	}

	path, err := r.cachePath(kind, raw)
	if err != nil {
		return "", err
	}

	if exists(path) {
		r.log.Debugf("use cached checkpoint %s for %s", path, raw)
		return path, nil
	}

	_, err, shared := r.group.Do(path, func() (any, error) {
		return nil, r.fetch(ctx, client, kind, raw, path)
	})
	if err != nil {
		return "", err
	}

	if shared {
		r.log.Debugf("shared download of %s", raw)
	}

	return path, nil
}

// fetch downloads raw into path while holding the file lock of path.
func (r *resolver) fetch(ctx context.Context, client ResourceClient, kind, raw, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	lock := flock.New(path + lockSuffix)
	if _, err := lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer lock.Unlock()

	// Another process may have finished the download while we waited.
	if exists(path) {
		r.log.Debugf("use cached checkpoint %s for %s", path, raw)
		return nil
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.log.Infof("downloading %s to %s", raw, path)
	start := time.Now()
	n, err := r.download(ctx, client, kind, raw, path)
	if err != nil {
		return err
	}

	r.log.Infof("downloaded %s (%s) in %s", raw, units.HumanSize(float64(n)), time.Since(start).Round(time.Millisecond))
	return nil
}

func (r *resolver) download(ctx context.Context, client ResourceClient, kind, raw, path string) (int64, error) {
	resp, err := client.Download(ctx, raw)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", raw, err)
	}
	defer resp.Body.Close()

	var opts []digest.Option
	if r.checkHash && kind == KindHTTPS {
		if prefix := digest.HashPrefix(path); prefix != "" {
			opts = append(opts, digest.WithPrefix(prefix))
		}
	}

	if resp.Digest != "" {
		d, err := digest.Parse(resp.Digest)
		if err != nil {
			return 0, err
		}
		opts = append(opts, digest.WithDigest(d))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*"+partialSuffix)
	if err != nil {
		return 0, err
	}

	var w io.Writer = tmp
	if r.progress != nil {
		w = io.MultiWriter(tmp, r.newProgressBar(resp.ContentLength, filepath.Base(path)))
	}

	n, err := io.Copy(w, digest.NewReader(resp.Body, opts...))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}

	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}

	if err != nil {
		os.Remove(tmp.Name())
		if errors.Is(err, digest.ErrDigestMismatch) {
			r.log.Errorf("checkpoint %s failed verification: %s", raw, err)
		}
		return 0, fmt.Errorf("download %s: %w", raw, err)
	}

	return n, nil
}

func (r *resolver) newProgressBar(length int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(length,
		progressbar.OptionSetWriter(r.progress),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(r.progress, "\n")
		}),
	)
}

// cachePath returns the cache file of raw, https sources are cached by file
// name and object storage sources by service, bucket and key.
func (r *resolver) cachePath(kind, raw string) (string, error) {
	switch kind {
	case KindHTTPS:
		u, err := url.Parse(raw)
		if err != nil {
			return "", err
		}

		name := filepath.Base(u.Path)
		if name == "." || name == "/" {
			return "", fmt.Errorf("invalid checkpoint url %q", raw)
		}

		return filepath.Join(r.cacheDir, name), nil
	case KindObjectStorage:
		location, err := objectstorage.ParseURL(raw)
		if err != nil {
			return "", err
		}

		path := filepath.Join(r.cacheDir, location.Service, location.Bucket, filepath.FromSlash(location.Key))
		if rel, err := filepath.Rel(r.cacheDir, path); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("checkpoint url %q escapes cache directory", raw)
		}

		return path, nil
	}

	return "", fmt.Errorf("%s: %w", raw, ErrUnsupportedSource)
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
