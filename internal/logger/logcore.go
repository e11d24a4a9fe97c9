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

package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// LogFileName is the file every registry logger appends to.
	LogFileName = "log_file.txt"

	// CoreLogFileName is the file of the core logger.
	CoreLogFileName = "core.log"
)

const (
	encodeTimeFormat = "2006-01-02 15:04:05"
)

// LogRotateConfig configures lumberjack rotation, the zero value disables it.
type LogRotateConfig struct {
	// Maximum size in megabytes of log files before rotation.
	MaxSize int

	// Maximum number of days to retain old log files.
	MaxAge int

	// Maximum number of old log files to keep.
	MaxBackups int
}

// Enabled reports whether rotation is configured.
func (c LogRotateConfig) Enabled() bool {
	return c.MaxSize > 0
}

// newEncoder renders "time name file:line LEVEL message" lines.
func newEncoder() zapcore.Encoder {
	return levelEncoder{zapcore.NewConsoleEncoder(encoderConfig())}
}

// levelEncoder writes the level in front of the message, the console encoder
// would otherwise put it before the name.
type levelEncoder struct {
	zapcore.Encoder
}

func (e levelEncoder) Clone() zapcore.Encoder {
	return levelEncoder{e.Encoder.Clone()}
}

func (e levelEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	entry.Message = entry.Level.CapitalString() + " " + entry.Message
	return e.Encoder.EncodeEntry(entry, fields)
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		NameKey:          "name",
		CallerKey:        "caller",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(encodeTimeFormat),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}
}

// openSyncer opens filePath for appending. The parent directory must exist,
// it is never created.
func openSyncer(filePath string, rotate LogRotateConfig) (zapcore.WriteSyncer, func() error, error) {
	dir := filepath.Dir(filePath)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, err
	}

	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%s is not a directory", dir)
	}

	if rotate.Enabled() {
		rotateLogger := &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    rotate.MaxSize,
			MaxAge:     rotate.MaxAge,
			MaxBackups: rotate.MaxBackups,
			LocalTime:  true,
		}

		return zapcore.AddSync(rotateLogger), rotateLogger.Close, nil
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}

	return file, file.Close, nil
}

// CreateLogger creates a logger appending to filePath.
func CreateLogger(filePath string, rotate LogRotateConfig, verbose bool) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}

	syncer, _, err := openSyncer(filePath, rotate)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(
		newEncoder(),
		syncer,
		level,
	)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.WarnLevel), zap.AddCallerSkip(1)), nil
}
