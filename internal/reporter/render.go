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
package reporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var anomalyStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("196")).
	Padding(0, 1).
	Border(lipgloss.RoundedBorder())

// Render produces the terminal-facing rendering of a Report: a
// glamour-rendered markdown body (mirroring teacher's
// library.Library.Summary markdown-builder idiom) with a lipgloss-styled
// anomaly banner standing out above it when any anomaly fired.
func Render(r Report) (string, error) {
	md := toMarkdown(r)
	body, err := glamour.Render(md, "dark")
	if err != nil {
		return "", err
	}

	if len(r.Anomalies) == 0 {
		return body, nil
	}
	banner := anomalyStyle.Render(fmt.Sprintf("%d anomaly(ies) detected for %s", len(r.Anomalies), r.Date.Format("2006-01-02")))
	return banner + "\n\n" + body, nil
}

func toMarkdown(r Report) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	fmt.Fprintf(&b, "# Daily report — %s\n\n", r.Date.Format("Monday, Jan 2 2006"))
	fmt.Fprintf(&b, "## Runs\n\n")
	p.Fprintf(&b, "  * Total: %d\n", r.Runs)
	p.Fprintf(&b, "  * Succeeded: %d\n", r.RunsSucceeded)
	p.Fprintf(&b, "  * Failed: %d\n\n", r.RunsFailed)

	fmt.Fprintf(&b, "## Validation\n\n")
	p.Fprintf(&b, "  * Rows validated: %d (%s vs prior day)\n", r.RowsTotal, signedInt(r.RowsTotalDelta))
	fmt.Fprintf(&b, "  * Overall failure rate: %.2f%% (%s vs prior day)\n\n", r.OverallFailureRate*100, signedPercent(r.FailureRateDelta))

	if len(r.BySchema) > 0 {
		fmt.Fprintf(&b, "## By schema\n\n")
		for _, sc := range r.BySchema {
			p.Fprintf(&b, "  * %s: %d rows, %.2f%% failed\n", sc.Schema, sc.Total, sc.FailureRate*100)
		}
		fmt.Fprintln(&b)
	}

	if len(r.Anomalies) > 0 {
		fmt.Fprintf(&b, "## Anomalies\n\n")
		for _, a := range r.Anomalies {
			if a.Schema != "" {
				fmt.Fprintf(&b, "  * **%s** (%s): %.2f%% exceeds threshold %.2f%% — %s\n", a.Kind, a.Schema, a.Value*100, a.Threshold*100, a.Detail)
			} else {
				fmt.Fprintf(&b, "  * **%s**: %s\n", a.Kind, a.Detail)
			}
		}
	}

	return b.String()
}

func signedInt(n int) string {
	if n >= 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

func signedPercent(f float64) string {
	pct := f * 100
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// renderAge is a thin wrapper around timeago.English, used by cmd/'s report
// command to phrase a run's recency the same way teacher's
// library.Library.Summary does for LastUpdated.
func renderAge(t time.Time) string {
	return timeago.English.Format(t)
}
