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

package trainer

import (
	"context"
	"net/http"
	"os"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"d7y.io/trainkit/internal/logger"
	"d7y.io/trainkit/pkg/objectstorage"
	"d7y.io/trainkit/pkg/source"
	"d7y.io/trainkit/trainer/checkpoint"
	"d7y.io/trainkit/trainer/config"
	"d7y.io/trainkit/trainer/metrics"
	"d7y.io/trainkit/trainer/resume"
	"d7y.io/trainkit/trainer/storage"
)

type Server struct {
	// Server configuration.
	config *config.Config

	// Registry of model loggers.
	registry *logger.Registry

	// Logger of the model.
	log *zap.SugaredLogger

	// Metrics server.
	metricsServer *http.Server

	// Storage interface.
	storage storage.Storage

	// Checkpoint store.
	checkpoint checkpoint.Store

	// Accelerator of the compute backend.
	accelerator checkpoint.Accelerator
}

// Option is a functional option for configuring the server.
type Option func(s *Server)

// WithAccelerator sets the accelerator whose cache is emptied after loads.
func WithAccelerator(accelerator checkpoint.Accelerator) Option {
	return func(s *Server) {
		s.accelerator = accelerator
	}
}

func New(ctx context.Context, cfg *config.Config, options ...Option) (*Server, error) {
	s := &Server{config: cfg}
	for _, opt := range options {
		opt(s)
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return nil, err
	}

	// Initialize model logger.
	level := zapcore.InfoLevel
	if cfg.Log.Verbose {
		level = zapcore.DebugLevel
	}

	s.registry = logger.NewRegistry(logger.WithLevel(level), logger.WithRotate(logger.LogRotateConfig{
		MaxSize:    cfg.Log.MaxSize,
		MaxAge:     cfg.Log.MaxAge,
		MaxBackups: cfg.Log.MaxBackups,
	}))

	log, err := s.registry.Get(cfg.Output, cfg.Model.Name)
	if err != nil {
		return nil, err
	}
	s.log = log

	// Initialize storage.
	s.storage = storage.New(cfg.Output)

	// Initialize resolver of remote checkpoints.
	resolverOptions := []source.Option{
		source.WithCheckHash(cfg.Cache.CheckHash),
		source.WithTimeout(cfg.Cache.Timeout),
		source.WithLogger(log),
	}

	if cfg.Cache.Progress {
		resolverOptions = append(resolverOptions, source.WithProgress(os.Stderr))
	}

	checkpointOptions := []checkpoint.Option{
		checkpoint.WithLogger(log),
		checkpoint.WithStorage(s.storage),
	}

	if s.accelerator != nil {
		checkpointOptions = append(checkpointOptions, checkpoint.WithAccelerator(s.accelerator))
	}

	// Initialize object storage.
	if cfg.ObjectStorage.Enable {
		objectStorage, err := objectstorage.New(cfg.ObjectStorage.Name, cfg.ObjectStorage.Region, cfg.ObjectStorage.Endpoint,
			cfg.ObjectStorage.AccessKey, cfg.ObjectStorage.SecretKey)
		if err != nil {
			return nil, err
		}

		resolverOptions = append(resolverOptions, source.WithObjectStorage(objectStorage))
		checkpointOptions = append(checkpointOptions, checkpoint.WithObjectStorage(objectStorage))
	}

	checkpointOptions = append(checkpointOptions, checkpoint.WithResolver(source.New(cfg.Cache.Dir, resolverOptions...)))
	s.checkpoint = checkpoint.New(checkpointOptions...)

	// Initialize metrics.
	if cfg.Metrics.Enable {
		s.metricsServer = metrics.New(&cfg.Metrics)
	}

	return s, nil
}

// Checkpoint returns the checkpoint store.
func (s *Server) Checkpoint() checkpoint.Store {
	return s.checkpoint
}

// Storage returns the checkpoint history.
func (s *Server) Storage() storage.Storage {
	return s.storage
}

// Logger returns the logger of the model.
func (s *Server) Logger() *zap.SugaredLogger {
	return s.log
}

// Resume restores the state to start training from. With auto resume the
// latest checkpoint in the output directory takes over model.resume, without
// a resume checkpoint model.pretrained is loaded for finetuning.
func (s *Server) Resume(ctx context.Context, model checkpoint.Model, optimizer checkpoint.Optimizer, scheduler checkpoint.Scheduler) (*checkpoint.LoadResult, error) {
	cfg := s.config
	if cfg.Train.AutoResume {
		latest, ok, err := resume.FindLatest(cfg.Output)
		if err != nil {
			return nil, err
		}

		if ok {
			if cfg.Model.Resume != "" {
				s.log.Warnf("auto-resume changing resume file from %s to %s", cfg.Model.Resume, latest)
			}

			cfg = cfg.WithResume(latest)
			s.log.Infof("auto resuming from %s", latest)
		} else {
			s.log.Infof("no checkpoint found in %s, ignoring auto resume", cfg.Output)
		}
	}

	if cfg.Model.Resume != "" {
		return s.checkpoint.Load(ctx, cfg, model, optimizer, scheduler)
	}

	if cfg.Model.Pretrained != "" {
		result, err := s.checkpoint.LoadForFinetune(ctx, cfg.Model.Pretrained, model)
		if err != nil {
			return nil, err
		}

		result.Config = cfg
		return result, nil
	}

	return &checkpoint.LoadResult{Config: cfg}, nil
}

func (s *Server) Serve() error {
	// Started metrics server.
	if s.metricsServer != nil {
		go func() {
			logger.Infof("started metrics server at %s", s.metricsServer.Addr)
			if err := s.metricsServer.ListenAndServe(); err != nil {
				if err == http.ErrServerClosed {
					return
				}

				logger.Fatalf("metrics server closed unexpect: %s", err.Error())
			}
		}()
	}

	return nil
}

func (s *Server) Stop() error {
	var errs *multierror.Error

	// Stop metrics server.
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(context.Background()); err != nil {
			errs = multierror.Append(errs, err)
		} else {
			logger.Info("metrics server closed under request")
		}
	}

	// Close model log files.
	if err := s.registry.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}

	return errs.ErrorOrNil()
}
