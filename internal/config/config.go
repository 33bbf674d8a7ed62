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

// Package config builds champion's single strongly-typed Config,
// generalized from teacher's cmd/root.go.initConfig: the same
// file-then-env precedence via viper, widened with an explicit
// CHAMPION_ env prefix and a struct shape instead of ad hoc
// viper.GetString calls scattered through cmd/.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is champion's complete runtime configuration. Precedence is
// defaults < config file < environment < CLI flags, matching viper's own
// layering when defaults are set first and flags are bound last.
type Config struct {
	Lake       LakeConfig           `mapstructure:"lake"`
	State      StateConfig          `mapstructure:"state"`
	Quarantine QuarantineConfig     `mapstructure:"quarantine"`
	Warehouse  WarehouseConfig      `mapstructure:"warehouse"`
	HTTP       HTTPConfig           `mapstructure:"http"`
	CB         CircuitBreakerConfig `mapstructure:"cb"`
	Validation ValidationConfig     `mapstructure:"validation"`
	Task       TaskConfig           `mapstructure:"task"`
	Schedule   ScheduleConfig       `mapstructure:"schedule"`
	Dedup      DedupConfig          `mapstructure:"dedup"`
	Enrich     EnrichConfig         `mapstructure:"enrich"`
}

type LakeConfig struct {
	Base         string `mapstructure:"base"`
	MirrorBucket string `mapstructure:"mirror_bucket"`
	MirrorKeyID  string `mapstructure:"mirror_key_id"`
	MirrorAppKey string `mapstructure:"mirror_app_key"`
}

type StateConfig struct {
	Dir         string `mapstructure:"dir"`
	DatabaseURL string `mapstructure:"database_url"`
}

type QuarantineConfig struct {
	Dir string `mapstructure:"dir"`
}

type WarehouseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type HTTPConfig struct {
	TimeoutConnect time.Duration `mapstructure:"timeout_connect"`
	TimeoutRead    time.Duration `mapstructure:"timeout_read"`
	Retries        int           `mapstructure:"retries"`
}

type CircuitBreakerConfig struct {
	Threshold int           `mapstructure:"threshold"`
	Cooldown  time.Duration `mapstructure:"cooldown"`
}

type ValidationConfig struct {
	BatchRows   int    `mapstructure:"batch_rows"`
	MaxSamples  int    `mapstructure:"max_samples"`
	TDCSeverity string `mapstructure:"tdc_severity"`
}

type TaskConfig struct {
	Parallelism int           `mapstructure:"parallelism"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CacheDir    string        `mapstructure:"cache_dir"`
}

type ScheduleConfig struct {
	TZ string `mapstructure:"tz"`
}

type DedupConfig struct {
	ExchangePriority []string `mapstructure:"exchange_priority"`
}

type EnrichConfig struct {
	InstrumentMasterURL string `mapstructure:"instrument_master_url"`
	APIKey              string `mapstructure:"api_key"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("lake.base", "./data/lake")
	v.SetDefault("lake.mirror_bucket", "")
	v.SetDefault("lake.mirror_key_id", "")
	v.SetDefault("lake.mirror_app_key", "")
	v.SetDefault("state.dir", "./data/state")
	v.SetDefault("state.database_url", "")
	v.SetDefault("quarantine.dir", "./data/quarantine")
	v.SetDefault("warehouse.host", "localhost")
	v.SetDefault("warehouse.port", 9000)
	v.SetDefault("warehouse.user", "default")
	v.SetDefault("warehouse.password", "")
	v.SetDefault("warehouse.database", "champion")
	v.SetDefault("http.timeout_connect", 10*time.Second)
	v.SetDefault("http.timeout_read", 30*time.Second)
	v.SetDefault("http.retries", 3)
	v.SetDefault("cb.threshold", 5)
	v.SetDefault("cb.cooldown", 60*time.Second)
	v.SetDefault("validation.batch_rows", 10000)
	v.SetDefault("validation.max_samples", 100)
	v.SetDefault("validation.tdc_severity", "warning")
	v.SetDefault("task.parallelism", 4)
	v.SetDefault("task.timeout", 15*time.Minute)
	v.SetDefault("task.cache_dir", "./data/cache")
	v.SetDefault("schedule.tz", "Asia/Kolkata")
	v.SetDefault("dedup.exchange_priority", []string{"NSE", "BSE"})
	v.SetDefault("enrich.instrument_master_url", "")
	v.SetDefault("enrich.api_key", "")
}

// New builds a Config from defaults, cmd's bound CLI flags, an optional
// config file, and CHAMPION_-prefixed environment variables — exactly
// defaults < file < env < CLI per spec.md §6. cfgFile may be empty, in
// which case $HOME/.champion.toml is tried (and silently skipped if
// absent, same as teacher's initConfig). cmd and flagToKey may both be nil
// for callers (tests, one-off tools) that don't need CLI-flag precedence.
func New(cfgFile string, cmd *cobra.Command, flagToKey map[string]string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := bindFlags(v, cmd, flagToKey); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigType("toml")
		v.SetConfigName(".champion")
	}

	v.SetEnvPrefix("CHAMPION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindFlags binds cmd's flags into v so CLI flags take final precedence
// over file and environment values, mirroring teacher's viper.BindPFlag
// usage in cmd/root.go's init().
func bindFlags(v *viper.Viper, cmd *cobra.Command, flagToKey map[string]string) error {
	if cmd == nil {
		return nil
	}
	for flag, key := range flagToKey {
		f := cmd.PersistentFlags().Lookup(flag)
		if f == nil {
			f = cmd.Flags().Lookup(flag)
		}
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}
