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
	"fmt"

	"github.com/spf13/cobra"

	"d7y.io/trainkit/internal/logger"
	"d7y.io/trainkit/trainer/config"
	"d7y.io/trainkit/trainer/resume"
)

var latestCmd = &cobra.Command{
	Use:               "latest [dir]",
	Short:             "print the latest checkpoint",
	Long:              `print the most recently modified checkpoint of the output directory, it fails when there is none.`,
	Args:              cobra.MaximumNArgs(1),
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Output
		if len(args) == 1 {
			dir = args[0]
		}

		path, ok, err := resume.FindLatest(dir)
		if err != nil {
			return err
		}

		if !ok {
			return fmt.Errorf("no checkpoint found in %s", dir)
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// logResumePlan logs the checkpoint a training job started with cfg continues from.
func logResumePlan(cfg *config.Config) error {
	if cfg.Train.AutoResume {
		path, ok, err := resume.FindLatest(cfg.Output)
		if err != nil {
			return err
		}

		if ok {
			logger.Infof("training resumes from %s", path)
			return nil
		}

		logger.Infof("no checkpoint found in %s, ignoring auto resume", cfg.Output)
	}

	switch {
	case cfg.Model.Resume != "":
		logger.Infof("training resumes from %s", cfg.Model.Resume)
	case cfg.Model.Pretrained != "":
		logger.Infof("training finetunes from %s", cfg.Model.Pretrained)
	default:
		logger.Infof("training starts from scratch")
	}

	return nil
}
