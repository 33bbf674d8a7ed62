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
package validator

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/sandeep-jaiswar/champion/internal/batch"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// structuralSpec is the JSON-Schema-like per-dataset structural rule file.
// Plain encoding/json is used deliberately here (DESIGN.md): no
// schema-description library appears anywhere in the example corpus, and
// this format is a flat, champion-specific shape rather than real JSON
// Schema, so adopting a JSON Schema validation library would add a
// dependency without buying compatibility.
type structuralSpec struct {
	Dataset string                    `json:"dataset"`
	Columns map[string]structuralCol `json:"columns"`
}

type structuralCol struct {
	Type     string `json:"type"` // "string" | "float64" | "int64" | "date"
	Required bool   `json:"required"`
	Regex    string `json:"regex,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

// LoadStructuralRules reads schemas/<dataset>.json, if present, and compiles
// it into a slice of Rule implementations.
func LoadStructuralRules(dataset string) ([]Rule, error) {
	raw, err := schemaFS.ReadFile(fmt.Sprintf("schemas/%s.json", dataset))
	if err != nil {
		return nil, err
	}
	var spec structuralSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, err
	}

	var rules []Rule
	for col, rule := range spec.Columns {
		col, rule := col, rule
		if rule.Required {
			rules = append(rules, ruleFunc{
				name:     "structural_required_" + col,
				severity: SeverityCritical,
				check: func(row batch.Row, _ RuleContext) []RuleViolation {
					if _, ok := row[col]; !ok {
						return []RuleViolation{violation("structural_required_"+col, SeverityCritical, col+" is required")}
					}
					return nil
				},
			})
		}
		if rule.Regex != "" {
			re, err := regexp.Compile(rule.Regex)
			if err != nil {
				return nil, err
			}
			rules = append(rules, ruleFunc{
				name:     "structural_regex_" + col,
				severity: SeverityCritical,
				check: func(row batch.Row, _ RuleContext) []RuleViolation {
					v, ok := row.String(col)
					if !ok || re.MatchString(v) {
						return nil
					}
					return []RuleViolation{violation("structural_regex_"+col, SeverityCritical, col+" does not match expected pattern")}
				},
			})
		}
		if rule.Min != nil || rule.Max != nil {
			min, max := rule.Min, rule.Max
			rules = append(rules, ruleFunc{
				name:     "structural_range_" + col,
				severity: SeverityWarning,
				check: func(row batch.Row, _ RuleContext) []RuleViolation {
					v, ok := row.Float64(col)
					if !ok {
						return nil
					}
					if (min != nil && v < *min) || (max != nil && v > *max) {
						return []RuleViolation{violation("structural_range_"+col, SeverityWarning, col+" outside declared range")}
					}
					return nil
				},
			})
		}
	}
	return rules, nil
}
