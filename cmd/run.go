// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeep-jaiswar/champion/internal/calendar"
	"github.com/sandeep-jaiswar/champion/internal/clock"
	"github.com/sandeep-jaiswar/champion/internal/flow"
	"github.com/sandeep-jaiswar/champion/internal/metrics"
	"github.com/sandeep-jaiswar/champion/internal/state"
	"github.com/sandeep-jaiswar/champion/internal/warehouse"
)

// runCmd replaces teacher's per-subscription run command (whose daemon mode
// was a bare "// TODO; os.Exit(0)") with an Orchestrator-driven run: every
// dataset/exchange pair in standardSources is a Flow, run either once for a
// single logical date or continuously on its own cron schedule.
var runCmd = &cobra.Command{
	Use:   "run [exchange...]",
	Short: "Run one ingestion pass for today, or daemonize scheduled flows",
	Long: `run executes every standard source's flow for the current logical
date and exits. With --daemon it instead registers each active source's cron
schedule (from the sources table) and runs until interrupted.

With no exchange arguments every registered exchange runs; pass one or more
exchange codes (NSE, BSE) to restrict the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		daemon, _ := cmd.Flags().GetBool("daemon")
		force, _ := cmd.Flags().GetBool("force")
		clk := clock.Real{}

		st, err := state.Connect(ctx, cfg.State.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect state store: %w", err)
		}
		defer st.Close()

		var wh *warehouse.Client
		if cfg.Warehouse.Host != "" {
			addr := fmt.Sprintf("%s:%d", cfg.Warehouse.Host, cfg.Warehouse.Port)
			wh, err = warehouse.Connect(ctx, addr, cfg.Warehouse.Database, cfg.Warehouse.User, cfg.Warehouse.Password)
			if err != nil {
				return fmt.Errorf("connect warehouse: %w", err)
			}
			defer wh.Close()
		}

		cals := loadCalendars(ctx, wh)

		p := newPipeline(clk, cfg, cals, wh, st, force)
		orch := flow.NewOrchestrator(st, clk, metrics.NopSink{}, logger)

		if daemon {
			return runDaemon(ctx, st, p, orch)
		}
		return runOnce(ctx, args, p, orch, clk.Now())
	},
}

func init() {
	runCmd.Flags().Bool("daemon", false, "run continuously, dispatching each active source on its cron schedule")
	runCmd.Flags().Bool("force", false, "reload a partition even if internal/state already recorded it as loaded")
	rootCmd.AddCommand(runCmd)
}

// loadCalendars builds one calendar.Calendar per exchange from whatever the
// trading_calendar dataset has loaded into the warehouse so far. With no
// warehouse configured, or before the first trading_calendar load, each
// calendar simply reports every weekday as a trading day — a fetch on an actual
// holiday then surfaces as an upstream failure instead of a skip, a
// conservative fallback rather than a silent miss.
func loadCalendars(ctx context.Context, wh *warehouse.Client) map[string]*calendar.Calendar {
	cals := map[string]*calendar.Calendar{}
	for _, exchange := range []string{"NSE", "BSE"} {
		cal := calendar.New(exchange)
		if wh != nil {
			if holidays, err := wh.TradingCalendar(ctx, exchange); err == nil {
				cal.LoadHolidays(holidays)
			} else {
				logger.Warn().Err(err).Str("exchange", exchange).Msg("could not load trading calendar, treating every weekday as a trading day")
			}
		}
		cals[exchange] = cal
	}
	return cals
}

// runOnce runs every standard and macro-indicator flow for today's logical
// date, once, restricted to exchanges if given.
func runOnce(ctx context.Context, exchanges []string, p *pipeline, orch *flow.Orchestrator, logicalDate time.Time) error {
	sources := standardSources
	if len(exchanges) > 0 {
		sources = nil
		for _, ex := range exchanges {
			sources = append(sources, sourcesForExchange(ex)...)
		}
	}

	var failed int
	for _, src := range sources {
		f, err := buildFlow(src, p)
		if err != nil {
			logger.Error().Err(err).Str("dataset", src.Dataset).Str("exchange", src.Exchange).Msg("skipping misconfigured source")
			failed++
			continue
		}
		result, err := orch.Run(ctx, f, logicalDate)
		if err != nil {
			logger.Error().Err(err).Str("flow", f.Name).Msg("flow run failed")
			failed++
			continue
		}
		logger.Info().Str("flow", f.Name).Str("run_id", result.RunID.String()).Msg("flow run finished")
	}

	for _, ms := range standardMacroSeries {
		f := buildMacroFlow(ms, p)
		if _, err := orch.Run(ctx, f, logicalDate); err != nil {
			logger.Error().Err(err).Str("flow", f.Name).Msg("macro flow run failed")
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d flow(s) failed, see logs", failed)
	}
	return nil
}

// runDaemon registers every active source's cron schedule and blocks until
// SIGINT/SIGTERM, mirroring teacher's unfinished daemon-mode intent.
func runDaemon(ctx context.Context, st *state.Store, p *pipeline, orch *flow.Orchestrator) error {
	sched, err := flow.NewScheduler(logger)
	if err != nil {
		return err
	}

	active, err := st.ActiveSources(ctx)
	if err != nil {
		return err
	}

	bySource := map[string]source{}
	for _, s := range standardSources {
		bySource[s.Exchange+"/"+s.Dataset] = s
	}

	for _, as := range active {
		src, ok := bySource[as.Exchange+"/"+as.Dataset]
		if !ok {
			logger.Warn().Str("exchange", as.Exchange).Str("dataset", as.Dataset).Msg("active source has no matching flow definition, skipping")
			continue
		}
		f, err := buildFlow(src, p)
		if err != nil {
			return err
		}
		if _, err := sched.AddFlow(as.Schedule, func(ctx context.Context, logicalDate time.Time) {
			if _, err := orch.Run(ctx, f, logicalDate); err != nil {
				logger.Error().Err(err).Str("flow", f.Name).Msg("scheduled flow run failed")
			}
		}); err != nil {
			return fmt.Errorf("register schedule for %s: %w", f.Name, err)
		}
	}

	sched.Start()
	logger.Info().Int("flows", len(active)).Msg("daemon started")

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	logger.Info().Msg("shutting down daemon")
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(stopCtx)
}
