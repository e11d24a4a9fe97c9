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
	"fmt"

	"d7y.io/trainkit/pkg/objectstorage"
)

type objectClient struct {
	storage objectstorage.ObjectStorage
}

// NewObjectClient returns a resource client downloading s3:// and oss:// urls.
func NewObjectClient(storage objectstorage.ObjectStorage) ResourceClient {
	return &objectClient{storage: storage}
}

// Download opens the content of rawURL.
func (c *objectClient) Download(ctx context.Context, rawURL string) (*Response, error) {
	location, err := objectstorage.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	metadata, ok, err := c.storage.GetObjectMetadata(ctx, location.Bucket, location.Key)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("object %s not found", location)
	}

	body, err := c.storage.GetObject(ctx, location.Bucket, location.Key)
	if err != nil {
		return nil, err
	}

	return &Response{
		Body:          body,
		ContentLength: metadata.ContentLength,
		Digest:        metadata.Digest,
	}, nil
}
