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

//go:generate mockgen -package mocks -source objectstorage.go -destination ./mocks/objectstorage_mock.go

package objectstorage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
)

type ObjectMetadata struct {
	// Key is object key.
	Key string

	// ContentLength is Content-Length header.
	ContentLength int64

	// ETag is ETag header.
	ETag string

	// Digest is object digest.
	Digest string

	// LastModifiedTime is last modified time.
	LastModifiedTime time.Time
}

// ObjectStorage is the interface used for object storage.
type ObjectStorage interface {
	// GetObjectMetadata returns metadata of object.
	GetObjectMetadata(ctx context.Context, bucketName, objectKey string) (*ObjectMetadata, bool, error)

	// GetObject returns data of object.
	GetObject(ctx context.Context, bucketName, objectKey string) (io.ReadCloser, error)

	// PutObject creates data of object.
	PutObject(ctx context.Context, bucketName, objectKey, digest string, reader io.ReadSeeker) error
}

// New object storage interface.
func New(name, region, endpoint, accessKey, secretKey string) (ObjectStorage, error) {
	switch name {
	case ServiceNameS3:
		return newS3(region, endpoint, accessKey, secretKey)
	case ServiceNameOSS:
		return newOSS(endpoint, accessKey, secretKey)
	}

	return nil, fmt.Errorf("unknow service name %s", name)
}

// Location is an object addressed as <service>://<bucket>/<key>.
type Location struct {
	Service string
	Bucket  string
	Key     string
}

// IsURL reports whether raw addresses an object of a supported service.
func IsURL(raw string) bool {
	return strings.HasPrefix(raw, ServiceNameS3+"://") || strings.HasPrefix(raw, ServiceNameOSS+"://")
}

// ParseURL parses an object url like s3://bucket/path/to/key.
func ParseURL(raw string) (*Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	if u.Scheme != ServiceNameS3 && u.Scheme != ServiceNameOSS {
		return nil, fmt.Errorf("unsupported object storage scheme %q", u.Scheme)
	}

	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" || u.Host == "." || u.Host == ".." {
		return nil, fmt.Errorf("invalid object url %q", raw)
	}

	for _, segment := range strings.Split(key, "/") {
		if segment == "." || segment == ".." {
			return nil, fmt.Errorf("invalid object key %q", key)
		}
	}

	return &Location{
		Service: u.Scheme,
		Bucket:  u.Host,
		Key:     key,
	}, nil
}

// String returns the url of the location.
func (l *Location) String() string {
	return fmt.Sprintf("%s://%s/%s", l.Service, l.Bucket, l.Key)
}
