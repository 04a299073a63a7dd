// Copyright 2023 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Command dtcore loads a task's INI configuration from either a local
// file or a Nacos config server, then hands it to the runtime.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cockroachdb/dtcore/internal/config"
)

const envShutdownTimeoutSecs = "SHUTDOWN_TIMEOUT_SECS"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("dtcore exited with an error")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var args config.Args
	var sourceFlag string

	cmd := &cobra.Command{
		Use:   "dtcore [config-path]",
		Short: "Run a data-movement task from an INI configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			source, err := config.ParseSource(sourceFlag)
			if err != nil {
				return err
			}
			args.Source = source
			if args.ConfigPath == "" && len(positional) == 1 {
				args.ConfigPath = positional[0]
			}
			return run(cmd.Context(), args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&sourceFlag, "config-source", "local", "where to load task configuration from: local or nacos")
	flags.StringVar(&args.ConfigPath, "config-path", "", "path to a local INI configuration file")
	flags.StringVar(&args.NacosAddress, "nacos-address", "", "Nacos server address, e.g. http://127.0.0.1:8848")
	flags.StringVar(&args.NacosDataID, "nacos-dataid", "", "Nacos config data ID")
	flags.StringVar(&args.NacosGroup, "nacos-group", config.DefaultNacosGroup, "Nacos config group")

	return cmd
}

func run(ctx context.Context, args config.Args) error {
	stop := installShutdownHandler()
	defer stop()

	content, err := config.Load(ctx, args)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logrus.WithField("bytes", len(content)).Info("task configuration loaded")
	return nil
}

// installShutdownHandler arms a process-level handler for the first
// interrupt signal: it gives any in-flight work a grace period (default
// 3s, overridable via SHUTDOWN_TIMEOUT_SECS) before exiting unconditionally.
// The returned func cancels the handler once the run completes normally.
func installShutdownHandler() func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)

	done := make(chan struct{})
	go func() {
		select {
		case <-ch:
			logrus.Warn("shutdown signal received, exiting after grace period")
			time.Sleep(shutdownGracePeriod())
			os.Exit(0)
		case <-done:
		}
	}()

	return func() { close(done) }
}

func shutdownGracePeriod() time.Duration {
	if s := os.Getenv(envShutdownTimeoutSecs); s != "" {
		if d, err := time.ParseDuration(s + "s"); err == nil {
			return d
		}
	}
	return 3 * time.Second
}
