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

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"d7y.io/trainkit/cmd/dependency"
	"d7y.io/trainkit/internal/logger"
	"d7y.io/trainkit/trainer"
	"d7y.io/trainkit/trainer/config"
	"d7y.io/trainkit/version"
)

const (
	// TrainerEnvPrefix is the environment prefix for viper, e.g. TRAINER_OUTPUT.
	TrainerEnvPrefix = "trainer"
)

var (
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "trainer",
	Short: "checkpoint lifecycle of training jobs",
	Long: `Trainer manages the checkpoints of a training job: it resolves the checkpoint to resume from,
downloads and verifies remote checkpoints, keeps the checkpoint history of the output directory and
exposes checkpoint metrics.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Convert config.
		if err := cfg.Convert(); err != nil {
			return err
		}

		// Validate config.
		return cfg.Validate()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		rotateConfig := logger.LogRotateConfig{
			MaxSize:    cfg.Log.MaxSize,
			MaxAge:     cfg.Log.MaxAge,
			MaxBackups: cfg.Log.MaxBackups,
		}

		// Initialize logger.
		if err := logger.InitTrainer(cfg.Log.Verbose, cfg.Log.Console, cfg.Log.Dir, rotateConfig); err != nil {
			return fmt.Errorf("init trainer logger: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		return runTrainer(ctx)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func init() {
	// Initialize default trainer config.
	cfg = config.New()

	// Add flags.
	flags := rootCmd.PersistentFlags()
	flags.String("output", cfg.Output, "the directory of checkpoints and logs")
	flags.String("resume", cfg.Model.Resume, "the checkpoint to resume from, a local path, https url or object storage url")
	flags.String("pretrained", cfg.Model.Pretrained, "the checkpoint whose ema weights are loaded for finetuning")
	flags.String("model-name", cfg.Model.Name, "the model name used as logger name")
	flags.Bool("eval", cfg.EvalMode, "only restore weights, training state is never resumed")
	flags.Bool("auto-resume", cfg.Train.AutoResume, "resume from the latest checkpoint in the output directory")
	flags.String("cache-dir", cfg.Cache.Dir, "the directory of downloaded checkpoints")

	for key, flag := range map[string]string{
		"output":           "output",
		"model.resume":     "resume",
		"model.pretrained": "pretrained",
		"model.name":       "model-name",
		"evalMode":         "eval",
		"train.autoResume": "auto-resume",
		"cache.dir":        "cache-dir",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	// Initialize command and config.
	dependency.InitCommandAndConfig(rootCmd, TrainerEnvPrefix, cfg)

	rootCmd.AddCommand(latestCmd, inspectCmd, historyCmd)
}

func runTrainer(ctx context.Context) error {
	logger.Infof("version:\n%s", version.Info())

	svr, err := trainer.New(ctx, cfg)
	if err != nil {
		return err
	}

	if err := logResumePlan(cfg); err != nil {
		return err
	}

	// Without metrics there is nothing left to serve.
	if !cfg.Metrics.Enable {
		return svr.Stop()
	}

	done := make(chan struct{})
	dependency.SetupQuitSignalHandler(func() {
		if err := svr.Stop(); err != nil {
			logger.Errorf("stop trainer failed: %s", err)
		}
		close(done)
	})

	if err := svr.Serve(); err != nil {
		return err
	}

	<-done
	return nil
}
