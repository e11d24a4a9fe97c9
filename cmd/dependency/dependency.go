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

package dependency

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"d7y.io/trainkit/internal/logger"
)

// InitCommandAndConfig initializes flags binding and common sub cmds.
// config is a pointer to configuration struct.
func InitCommandAndConfig(cmd *cobra.Command, envPrefix string, config any) {
	cobra.OnInitialize(func() { initConfig(envPrefix, config) })

	if !cmd.HasParent() {
		flags := cmd.PersistentFlags()
		flags.String("config", "", "the path of configuration file with yaml extension name")
		flags.Bool("console", false, "whether logger output records to the stdout")
		flags.Bool("verbose", false, "whether logger use debug level")

		// Bind common flags.
		if err := viper.BindPFlag("config", flags.Lookup("config")); err != nil {
			panic(err)
		}

		if err := viper.BindPFlag("log.console", flags.Lookup("console")); err != nil {
			panic(err)
		}

		if err := viper.BindPFlag("log.verbose", flags.Lookup("verbose")); err != nil {
			panic(err)
		}

		// Add common cmds only on root cmd.
		cmd.AddCommand(VersionCmd)
	}
}

// SetupQuitSignalHandler sets up a signal handler for SIGTERM and SIGINT.
func SetupQuitSignalHandler(handler func()) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		var done bool
		for sig := range signals {
			logger.Warnf("receive %s signal", sig)
			if !done {
				done = true
				handler()
				logger.Warnf("handle signal %s finish", sig)
			}
		}
	}()
}

// initConfig reads in config file and ENV variables if set.
func initConfig(envPrefix string, config any) {
	// Use config file from the flag.
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			logger.Fatalf("read config file %s: %s", cfgFile, err)
		}
	}

	viper.SetEnvPrefix(strings.ToUpper(envPrefix))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Environment variables are only looked up for keys viper knows about.
	if err := setDefaults(config); err != nil {
		logger.Fatalf("set config defaults: %s", err)
	}

	if err := viper.Unmarshal(config, initDecoderConfig); err != nil {
		logger.Fatalf("unmarshal config to struct: %s", err)
	}
}

// setDefaults registers every key of config with its current value as default.
func setDefaults(config any) error {
	b, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return err
	}

	setDefaultsWithPrefix("", m)
	return nil
}

func setDefaultsWithPrefix(prefix string, m map[string]any) {
	for key, value := range m {
		if prefix != "" {
			key = prefix + "." + key
		}

		if sub, ok := value.(map[string]any); ok {
			setDefaultsWithPrefix(key, sub)
			continue
		}

		viper.SetDefault(key, value)
	}
}

func initDecoderConfig(dc *mapstructure.DecoderConfig) {
	dc.TagName = "mapstructure"
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}
