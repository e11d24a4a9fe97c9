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

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"d7y.io/trainkit/trainer/config"
	"d7y.io/trainkit/version"
)

const (
	// MetricsNamespace is the namespace of trainkit metrics.
	MetricsNamespace = "trainkit"

	// CheckpointMetricsName is the subsystem of checkpoint metrics.
	CheckpointMetricsName = "checkpoint"
)

// Variables declared for metrics.
var (
	LoadCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: CheckpointMetricsName,
		Name:      "load_total",
		Help:      "Counter of the number of the checkpoint loaded.",
	}, []string{"type", "source"})

	LoadFailureCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: CheckpointMetricsName,
		Name:      "load_failure_total",
		Help:      "Counter of the number of failed of the checkpoint loaded.",
	}, []string{"type", "source"})

	SaveCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: CheckpointMetricsName,
		Name:      "save_total",
		Help:      "Counter of the number of the checkpoint saved.",
	}, []string{"kind"})

	SaveFailureCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: CheckpointMetricsName,
		Name:      "save_failure_total",
		Help:      "Counter of the number of failed of the checkpoint saved.",
	}, []string{"kind"})

	SaveBytesCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: CheckpointMetricsName,
		Name:      "save_bytes_total",
		Help:      "Counter of the number of bytes of the checkpoint saved.",
	}, []string{"kind"})

	UploadCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: CheckpointMetricsName,
		Name:      "upload_total",
		Help:      "Counter of the number of the upload best model.",
	})

	UploadFailureCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: CheckpointMetricsName,
		Name:      "upload_failure_total",
		Help:      "Counter of the number of failed of the upload best model.",
	})

	MaxAccuracyGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Subsystem: CheckpointMetricsName,
		Name:      "max_accuracy",
		Help:      "Max accuracy of the last saved or loaded checkpoint.",
	})

	VersionGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Subsystem: CheckpointMetricsName,
		Name:      "version",
		Help:      "Version info of the service.",
	}, []string{"major", "minor", "git_version", "git_commit", "platform", "build_time", "go_version", "go_tags", "go_gcflags"})
)

func New(cfg *config.MetricsConfig) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	VersionGauge.WithLabelValues(version.Major, version.Minor, version.GitVersion, version.GitCommit, version.Platform, version.BuildTime, version.GoVersion, version.Gotags, version.Gogcflags).Set(1)
	return &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}
}
