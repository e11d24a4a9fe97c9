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

package config

import "time"

const (
	// DefaultOutput is default output directory of checkpoints and logs.
	DefaultOutput = "output"

	// DefaultTrainEpochs is default number of training epochs.
	DefaultTrainEpochs = 300

	// DefaultMetricsAddr is default address for metrics server.
	DefaultMetricsAddr = ":8000"

	// DefaultCacheDirName is the directory under the user cache directory
	// holding downloaded checkpoints.
	DefaultCacheDirName = "trainkit/checkpoints"

	// DefaultDownloadTimeout is default timeout of a remote checkpoint download.
	DefaultDownloadTimeout = 30 * time.Minute
)

const (
	// DefaultLogRotateMaxSize disables rotation, log files grow unbounded.
	DefaultLogRotateMaxSize = 0

	// DefaultLogRotateMaxAge is default number of days to retain rotated files.
	DefaultLogRotateMaxAge = 7

	// DefaultLogRotateMaxBackups is default number of rotated files to keep.
	DefaultLogRotateMaxBackups = 20
)

const (
	// ObjectStorageS3 is the name of s3 object storage.
	ObjectStorageS3 = "s3"

	// ObjectStorageOSS is the name of oss object storage.
	ObjectStorageOSS = "oss"
)

// redacted replaces secrets in configuration snapshots.
const redacted = "******"
