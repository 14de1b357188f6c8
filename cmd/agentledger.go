// Copyright © 2022 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
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

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/kaleido-io/agentledger/internal/engine"
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var sigs = make(chan os.Signal, 1)

var rootCmd = &cobra.Command{
	Use:   "agentledger",
	Short: "Agent registry indexer",
	Long: `Indexes the events of an on-chain agent registry, assigning scoped sequence IDs
and hash chains, and reconciles them against the finalized ledger state`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Assigns scoped sequence IDs to every unsequenced record, then exits",
	RunE: func(cmd *cobra.Command, args []string) error {
		return backfill()
	},
}

var cfgFile string

var _utEngine engine.Engine

func getEngine() engine.Engine {
	if _utEngine != nil {
		return _utEngine
	}
	return engine.NewEngine()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "f", "", "config file")
	rootCmd.AddCommand(backfillCmd)
}

// Execute is called by the main method of the package
func Execute() error {
	return rootCmd.Execute()
}

func initContext() (context.Context, error) {
	// Read the configuration first of all
	err := config.ReadConfig(cfgFile)

	// Setup logging after reading config (even if failed), to output header correctly
	ctx := log.WithLogger(context.Background(), logrus.WithField("pid", os.Getpid()))
	log.SetLevel(config.GetString(config.LogLevel))
	log.SetFormatting(log.Formatting{
		DisableColor: !config.GetBool(config.LogColor),
		UTC:          config.GetBool(config.LogUTC),
	})
	log.L(ctx).Infof("Agent Ledger")
	log.L(ctx).Infof("© Copyright 2022 Kaleido, Inc.")

	// Deferred error return from reading config
	if err != nil {
		return ctx, i18n.WrapError(ctx, err, i18n.MsgConfigFailed)
	}
	return ctx, nil
}

func run() error {
	ctx, err := initContext()
	if err != nil {
		return err
	}
	ctx, cancelCtx := context.WithCancel(ctx)
	defer cancelCtx()

	e := getEngine()
	if err = e.Init(ctx, cancelCtx); err != nil {
		return err
	}
	if err = e.Start(); err != nil {
		return err
	}

	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	select {
	case sig := <-sigs:
		log.L(ctx).Infof("Shutting down due to %s", sig.String())
	case <-ctx.Done():
		log.L(ctx).Infof("Shutting down due to cancelled context")
	}
	cancelCtx()
	e.WaitStop()
	return nil
}

func backfill() error {
	ctx, err := initContext()
	if err != nil {
		return err
	}
	ctx, cancelCtx := context.WithCancel(ctx)
	defer cancelCtx()

	e := getEngine()
	if err = e.Init(ctx, cancelCtx); err != nil {
		return err
	}
	defer e.WaitStop()
	count, err := e.Backfill(ctx)
	if err != nil {
		return err
	}
	log.L(ctx).Infof("Backfill assigned %d sequences", count)
	return nil
}
