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
	"io"
	"text/tabwriter"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"d7y.io/trainkit/trainer/storage"
)

var historyCmd = &cobra.Command{
	Use:               "history",
	Short:             "list saved checkpoints",
	Long:              `list the checkpoints saved to the output directory in write order.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := storage.New(cfg.Output).ListRecord()
		if err != nil {
			return err
		}

		return printRecords(cmd.OutOrStdout(), records)
	},
}

func printRecords(w io.Writer, records []storage.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EPOCH\tKIND\tMAX ACCURACY\tSIZE\tCREATED\tPATH")
	for _, record := range records {
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%s\t%s\t%s\n",
			record.Epoch,
			record.Kind,
			record.MaxAccuracy,
			units.HumanSize(float64(record.Size)),
			time.Unix(0, record.CreatedAt).Format(time.RFC3339),
			record.Path,
		)
	}

	return tw.Flush()
}
