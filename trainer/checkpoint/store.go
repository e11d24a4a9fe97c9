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

package checkpoint

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-units"
	"go.uber.org/zap"

	"d7y.io/trainkit/internal/logger"
	"d7y.io/trainkit/pkg/digest"
	"d7y.io/trainkit/pkg/objectstorage"
	"d7y.io/trainkit/pkg/slices"
	"d7y.io/trainkit/pkg/source"
	"d7y.io/trainkit/pkg/tensor"
	"d7y.io/trainkit/trainer/config"
	"d7y.io/trainkit/trainer/metrics"
	"d7y.io/trainkit/trainer/storage"
)

const (
	loadTypeResume   = "resume"
	loadTypeFinetune = "finetune"

	// headKeyword marks classifier parameters that finetuning never overwrites.
	headKeyword = "head"
)

// LoadResult is the outcome of loading a checkpoint.
type LoadResult struct {
	// MaxAccuracy is the stored max_accuracy or 0.
	MaxAccuracy float64

	// Config is the configuration to continue with, StartEpoch is advanced
	// past the stored epoch when training state was restored.
	Config *config.Config

	// Epoch is the stored epoch when training state was restored.
	Epoch int

	// Resumed reports whether optimizer, scheduler and epoch were restored.
	Resumed bool

	// MissingKeys are model parameters absent from the checkpoint.
	MissingKeys []string

	// UnexpectedKeys are checkpoint entries absent from the model.
	UnexpectedKeys []string
}

// Summary describes a checkpoint file.
type Summary struct {
	Path          string
	Size          int64
	Keys          []string
	Epoch         *int
	MaxAccuracy   *float64
	Tensors       int
	Parameters    int
	EMAParameters int
	Config        string
}

// Store loads and saves checkpoints.
type Store interface {
	// Load restores model weights from cfg.Model.Resume and, unless
	// cfg.EvalMode is set, the optimizer, scheduler and epoch.
	Load(ctx context.Context, cfg *config.Config, model Model, optimizer Optimizer, scheduler Scheduler) (*LoadResult, error)

	// LoadForFinetune copies the ema weights of a pretrained checkpoint into
	// the model, classifier head parameters are left untouched.
	LoadForFinetune(ctx context.Context, pretrainPath string, model Model) (*LoadResult, error)

	// SaveBest writes the model, epoch and accuracy to cfg.Output/best_model.pth.
	SaveBest(ctx context.Context, cfg *config.Config, epoch int, model Model, maxAccuracy float64, optimizer Optimizer, scheduler Scheduler) error

	// Save writes a resumable checkpoint to cfg.Output/ckpt_epoch_<epoch>.pth.
	Save(ctx context.Context, cfg *config.Config, epoch int, model Model, maxAccuracy float64, optimizer Optimizer, scheduler Scheduler) (string, error)

	// Inspect describes the checkpoint at path.
	Inspect(ctx context.Context, path string) (*Summary, error)
}

type store struct {
	log           *zap.SugaredLogger
	resolver      source.Resolver
	objectStorage objectstorage.ObjectStorage
	storage       storage.Storage
	accelerator   Accelerator
}

// Option is a functional option for configuring the store.
type Option func(s *store)

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *store) {
		s.log = log
	}
}

// WithResolver sets the resolver of remote checkpoints.
func WithResolver(resolver source.Resolver) Option {
	return func(s *store) {
		s.resolver = resolver
	}
}

// WithObjectStorage sets the object storage receiving uploaded best models.
func WithObjectStorage(objectStorage objectstorage.ObjectStorage) Option {
	return func(s *store) {
		s.objectStorage = objectStorage
	}
}

// WithStorage sets the checkpoint history storage.
func WithStorage(storage storage.Storage) Option {
	return func(s *store) {
		s.storage = storage
	}
}

// WithAccelerator sets the accelerator whose cache is emptied after loads.
func WithAccelerator(accelerator Accelerator) Option {
	return func(s *store) {
		s.accelerator = accelerator
	}
}

// New returns a checkpoint store.
func New(options ...Option) Store {
	s := &store{
		log:         logger.CoreLogger,
		resolver:    source.New(os.TempDir()),
		accelerator: noopAccelerator{},
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Load restores a checkpoint for resuming or evaluation.
func (s *store) Load(ctx context.Context, cfg *config.Config, model Model, optimizer Optimizer, scheduler Scheduler) (result *LoadResult, err error) {
	raw := cfg.Model.Resume
	if raw == "" {
		return nil, errors.New("model requires parameter resume")
	}

	defer func() {
		if err != nil {
			metrics.LoadFailureCount.WithLabelValues(loadTypeResume, source.Kind(raw)).Inc()
		}
	}()
	metrics.LoadCount.WithLabelValues(loadTypeResume, source.Kind(raw)).Inc()

	s.log.Infof("resuming from %s", raw)
	ckpt, err := s.read(ctx, raw)
	if err != nil {
		return nil, err
	}
	defer s.release()

	missing, unexpected, err := s.mergeModel(model, ckpt.Model)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", raw, err)
	}

	result = &LoadResult{
		Config:         cfg,
		MissingKeys:    missing,
		UnexpectedKeys: unexpected,
	}

	if !cfg.EvalMode && ckpt.Resumable() {
		if optimizer == nil || scheduler == nil {
			s.log.Warnf("checkpoint %s holds training state but no optimizer or scheduler was given, skip restoring", raw)
		} else {
			if err := optimizer.UnmarshalBinary(ckpt.Optimizer); err != nil {
				return nil, fmt.Errorf("restore optimizer from %s: %w", raw, err)
			}

			if err := scheduler.UnmarshalBinary(ckpt.LRScheduler); err != nil {
				return nil, fmt.Errorf("restore lr scheduler from %s: %w", raw, err)
			}

			result.Epoch = *ckpt.Epoch
			result.Resumed = true
			result.Config = cfg.WithStartEpoch(*ckpt.Epoch + 1)
			s.log.Infof("loaded successfully %s (epoch %d)", raw, *ckpt.Epoch)
		}
	}

	if ckpt.MaxAccuracy != nil {
		result.MaxAccuracy = *ckpt.MaxAccuracy
		metrics.MaxAccuracyGauge.Set(result.MaxAccuracy)
	}

	return result, nil
}

// LoadForFinetune copies ema weights into the model.
func (s *store) LoadForFinetune(ctx context.Context, pretrainPath string, model Model) (result *LoadResult, err error) {
	defer func() {
		if err != nil {
			metrics.LoadFailureCount.WithLabelValues(loadTypeFinetune, source.Kind(pretrainPath)).Inc()
		}
	}()
	metrics.LoadCount.WithLabelValues(loadTypeFinetune, source.Kind(pretrainPath)).Inc()

	s.log.Infof("finetuning from %s", pretrainPath)
	ckpt, err := s.read(ctx, pretrainPath)
	if err != nil {
		return nil, err
	}
	defer s.release()

	if ckpt.StateDictEMA == nil {
		return nil, fmt.Errorf("checkpoint %s has no %s", pretrainPath, KeyStateDictEMA)
	}

	live := model.StateDict()
	var copied, skipped []string
	for _, key := range ckpt.StateDictEMA.Keys() {
		dst, ok := live[key]
		if !ok || strings.Contains(key, headKeyword) {
			skipped = append(skipped, key)
			continue
		}

		if !dst.SameShape(ckpt.StateDictEMA[key]) {
			return nil, fmt.Errorf("load %s: parameter %s %v does not fit %v: %w",
				pretrainPath, key, ckpt.StateDictEMA[key].Shape, dst.Shape, tensor.ErrShapeMismatch)
		}

		copied = append(copied, key)
	}

	// Shapes are checked above so no parameter is half written on error.
	for _, key := range copied {
		if err := live[key].CopyFrom(ckpt.StateDictEMA[key]); err != nil {
			return nil, err
		}
	}

	s.log.Infof("loaded %d ema tensors from %s, skipped %v", len(copied), pretrainPath, skipped)
	return &LoadResult{MaxAccuracy: 0}, nil
}

// SaveBest writes the best model.
func (s *store) SaveBest(ctx context.Context, cfg *config.Config, epoch int, model Model, maxAccuracy float64, optimizer Optimizer, scheduler Scheduler) error {
	ckpt, err := s.newCheckpoint(cfg, epoch, model, maxAccuracy)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.Output, BestModelFileName)
	if err := s.write(storage.KindBest, path, epoch, maxAccuracy, ckpt); err != nil {
		return err
	}

	if cfg.ObjectStorage.Upload && s.objectStorage != nil {
		if err := s.upload(ctx, cfg, path); err != nil {
			return err
		}
	}

	return nil
}

// Save writes a resumable checkpoint for epoch.
func (s *store) Save(ctx context.Context, cfg *config.Config, epoch int, model Model, maxAccuracy float64, optimizer Optimizer, scheduler Scheduler) (string, error) {
	if optimizer == nil || scheduler == nil {
		return "", errors.New("resumable checkpoint requires optimizer and scheduler")
	}

	ckpt, err := s.newCheckpoint(cfg, epoch, model, maxAccuracy)
	if err != nil {
		return "", err
	}

	if ckpt.Optimizer, err = marshalState(optimizer); err != nil {
		return "", fmt.Errorf("marshal optimizer: %w", err)
	}

	if ckpt.LRScheduler, err = marshalState(scheduler); err != nil {
		return "", fmt.Errorf("marshal lr scheduler: %w", err)
	}

	path := filepath.Join(cfg.Output, EpochFileName(epoch))
	if err := s.write(storage.KindEpoch, path, epoch, maxAccuracy, ckpt); err != nil {
		return "", err
	}

	return path, nil
}

// Inspect describes the checkpoint at path.
func (s *store) Inspect(ctx context.Context, raw string) (*Summary, error) {
	path, err := s.resolver.Resolve(ctx, raw)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	keys, err := ReadKeys(path)
	if err != nil {
		return nil, err
	}

	ckpt, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Path:          path,
		Size:          info.Size(),
		Keys:          keys,
		Epoch:         ckpt.Epoch,
		MaxAccuracy:   ckpt.MaxAccuracy,
		Tensors:       len(ckpt.Model),
		Parameters:    ckpt.Model.Numel(),
		EMAParameters: ckpt.StateDictEMA.Numel(),
		Config:        ckpt.Config,
	}, nil
}

// EpochFileName returns the file name of the resumable checkpoint of epoch.
func EpochFileName(epoch int) string {
	return fmt.Sprintf("ckpt_epoch_%d.%s", epoch, FileExt)
}

// marshalState never returns nil data, nil marks absent state in the bundle.
func marshalState(state encoding.BinaryMarshaler) ([]byte, error) {
	data, err := state.MarshalBinary()
	if err != nil {
		return nil, err
	}

	if data == nil {
		data = []byte{}
	}

	return data, nil
}

func (s *store) read(ctx context.Context, raw string) (*Checkpoint, error) {
	path, err := s.resolver.Resolve(ctx, raw)
	if err != nil {
		return nil, err
	}

	return ReadFile(path)
}

// release runs once the decoded bundle is no longer referenced.
func (s *store) release() {
	s.accelerator.EmptyCache()
}

// mergeModel loads the tensors shared by the model and the checkpoint, the
// rest are reported and skipped.
func (s *store) mergeModel(model Model, sd tensor.StateDict) ([]string, []string, error) {
	live := model.StateDict()
	missing, unexpected := slices.Difference(live.Keys(), sd.Keys())
	if len(missing) > 0 {
		s.log.Warnf("missing keys: %v", missing)
	}

	if len(unexpected) > 0 {
		s.log.Warnf("unexpected keys: %v", unexpected)
	}

	shared := make(tensor.StateDict, len(sd))
	for key, t := range sd {
		dst, ok := live[key]
		if !ok {
			continue
		}

		if !dst.SameShape(t) {
			return nil, nil, fmt.Errorf("parameter %s %v does not fit %v: %w", key, t.Shape, dst.Shape, tensor.ErrShapeMismatch)
		}

		shared[key] = t
	}

	if err := model.LoadStateDict(shared); err != nil {
		return nil, nil, err
	}

	return missing, unexpected, nil
}

func (s *store) newCheckpoint(cfg *config.Config, epoch int, model Model, maxAccuracy float64) (*Checkpoint, error) {
	if epoch < 0 {
		return nil, fmt.Errorf("epoch %d requires non-negative value", epoch)
	}

	snapshot, err := cfg.Snapshot()
	if err != nil {
		return nil, err
	}

	return &Checkpoint{
		Model:       model.StateDict(),
		Epoch:       &epoch,
		MaxAccuracy: &maxAccuracy,
		Config:      string(snapshot),
	}, nil
}

func (s *store) write(kind, path string, epoch int, maxAccuracy float64, ckpt *Checkpoint) error {
	s.log.Infof("%s saving......", path)
	size, err := WriteFile(path, ckpt)
	if err != nil {
		metrics.SaveFailureCount.WithLabelValues(kind).Inc()
		return err
	}

	metrics.SaveCount.WithLabelValues(kind).Inc()
	metrics.SaveBytesCount.WithLabelValues(kind).Add(float64(size))
	metrics.MaxAccuracyGauge.Set(maxAccuracy)
	s.log.Infof("%s saved (%s) !!!", path, units.HumanSize(float64(size)))

	if s.storage != nil {
		if err := s.storage.CreateRecord(storage.Record{
			Epoch:       epoch,
			Kind:        kind,
			Path:        path,
			Size:        size,
			MaxAccuracy: maxAccuracy,
			CreatedAt:   time.Now().UnixNano(),
		}); err != nil {
			s.log.Warnf("record %s in history failed: %s", path, err)
		}
	}

	return nil
}

func (s *store) upload(ctx context.Context, cfg *config.Config, filePath string) error {
	metrics.UploadCount.Inc()

	d, err := digest.HashFile(filePath)
	if err != nil {
		metrics.UploadFailureCount.Inc()
		return err
	}

	f, err := os.Open(filePath)
	if err != nil {
		metrics.UploadFailureCount.Inc()
		return err
	}
	defer f.Close()

	key := path.Join(cfg.Model.Name, BestModelFileName)
	if err := s.objectStorage.PutObject(ctx, cfg.ObjectStorage.Bucket, key, d.String(), f); err != nil {
		metrics.UploadFailureCount.Inc()
		return fmt.Errorf("upload %s to %s/%s: %w", filePath, cfg.ObjectStorage.Bucket, key, err)
	}

	s.log.Infof("uploaded %s to %s/%s", filePath, cfg.ObjectStorage.Bucket, key)
	return nil
}
