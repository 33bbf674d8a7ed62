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
package config_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sandeep-jaiswar/champion/internal/config"
)

var _ = Describe("New", func() {
	It("falls back to defaults when no file or env override is set", func() {
		cfg, err := config.New("", nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Schedule.TZ).To(Equal("Asia/Kolkata"))
		Expect(cfg.Task.Parallelism).To(Equal(4))
		Expect(cfg.Validation.TDCSeverity).To(Equal("warning"))
		Expect(cfg.Dedup.ExchangePriority).To(Equal([]string{"NSE", "BSE"}))
	})

	It("lets a config file override a default", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "champion.toml")
		Expect(os.WriteFile(path, []byte("[task]\nparallelism = 8\n"), 0o644)).To(Succeed())

		cfg, err := config.New(path, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Task.Parallelism).To(Equal(8))
	})

	It("lets an environment variable override a config file value", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "champion.toml")
		Expect(os.WriteFile(path, []byte("[task]\nparallelism = 8\n"), 0o644)).To(Succeed())

		os.Setenv("CHAMPION_TASK_PARALLELISM", "16")
		defer os.Unsetenv("CHAMPION_TASK_PARALLELISM")

		cfg, err := config.New(path, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Task.Parallelism).To(Equal(16))
	})

	It("lets a bound CLI flag override everything else", func() {
		os.Setenv("CHAMPION_TASK_PARALLELISM", "16")
		defer os.Unsetenv("CHAMPION_TASK_PARALLELISM")

		cmd := &cobra.Command{Use: "test"}
		cmd.PersistentFlags().Int("parallelism", 4, "task parallelism")
		Expect(cmd.PersistentFlags().Set("parallelism", "32")).To(Succeed())

		cfg, err := config.New("", cmd, map[string]string{"parallelism": "task.parallelism"})
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Task.Parallelism).To(Equal(32))
	})

	It("parses duration-typed fields", func() {
		cfg, err := config.New("", nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Task.Timeout).To(Equal(15 * time.Minute))
		Expect(cfg.CB.Cooldown).To(Equal(60 * time.Second))
	})
})
