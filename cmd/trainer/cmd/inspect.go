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
	"io"
	"os"
	"strings"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"d7y.io/trainkit/internal/logger"
	"d7y.io/trainkit/pkg/objectstorage"
	"d7y.io/trainkit/pkg/source"
	"d7y.io/trainkit/trainer/checkpoint"
	"d7y.io/trainkit/trainer/config"
)

var inspectCmd = &cobra.Command{
	Use:               "inspect <checkpoint>",
	Short:             "describe a checkpoint",
	Long:              `describe the keys, epoch, accuracy and parameter counts of a local or remote checkpoint.`,
	Args:              cobra.ExactArgs(1),
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newCheckpointStore(cfg)
		if err != nil {
			return err
		}

		summary, err := store.Inspect(context.Background(), args[0])
		if err != nil {
			return err
		}

		printSummary(cmd.OutOrStdout(), summary)
		return nil
	},
}

// newCheckpointStore returns a store reading checkpoints without touching the output directory.
func newCheckpointStore(cfg *config.Config) (checkpoint.Store, error) {
	options := []source.Option{
		source.WithCheckHash(cfg.Cache.CheckHash),
		source.WithTimeout(cfg.Cache.Timeout),
		source.WithLogger(logger.CoreLogger),
	}

	if cfg.Cache.Progress {
		options = append(options, source.WithProgress(os.Stderr))
	}

	if cfg.ObjectStorage.Enable {
		objectStorage, err := objectstorage.New(cfg.ObjectStorage.Name, cfg.ObjectStorage.Region, cfg.ObjectStorage.Endpoint,
			cfg.ObjectStorage.AccessKey, cfg.ObjectStorage.SecretKey)
		if err != nil {
			return nil, err
		}

		options = append(options, source.WithObjectStorage(objectStorage))
	}

	return checkpoint.New(
		checkpoint.WithLogger(logger.CoreLogger),
		checkpoint.WithResolver(source.New(cfg.Cache.Dir, options...)),
	), nil
}

func printSummary(w io.Writer, summary *checkpoint.Summary) {
	fmt.Fprintf(w, "Path: %s\n", summary.Path)
	fmt.Fprintf(w, "Size: %s\n", units.HumanSize(float64(summary.Size)))
	fmt.Fprintf(w, "Keys: %s\n", strings.Join(summary.Keys, ", "))
	if summary.Epoch != nil {
		fmt.Fprintf(w, "Epoch: %d\n", *summary.Epoch)
	}

	if summary.MaxAccuracy != nil {
		fmt.Fprintf(w, "MaxAccuracy: %.3f\n", *summary.MaxAccuracy)
	}

	fmt.Fprintf(w, "Tensors: %d\n", summary.Tensors)
	fmt.Fprintf(w, "Parameters: %s\n", units.CustomSize("%.4g%s", float64(summary.Parameters), 1000.0, []string{"", "K", "M", "B", "T"}))
	if summary.EMAParameters > 0 {
		fmt.Fprintf(w, "EMAParameters: %s\n", units.CustomSize("%.4g%s", float64(summary.EMAParameters), 1000.0, []string{"", "K", "M", "B", "T"}))
	}
}
