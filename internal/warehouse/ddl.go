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
package warehouse

import "embed"

// schemaFS embeds the canonical ClickHouse DDL for every dataset, mirroring
// teacher's db/migrate.go `//go:embed migrations/*` pattern. These files are
// kept in lockstep with internal/datasets' Definition.WarehouseDDL strings —
// schemaFS is the operator-facing copy (what `champion schema` prints/applies
// ahead of a run), the datasets package is what EnsureTable executes inline.
//
//go:embed schema/*.sql
var schemaFS embed.FS

// DDL reads the embedded DDL file for a dataset name.
func DDL(dataset string) (string, error) {
	raw, err := schemaFS.ReadFile("schema/" + dataset + ".sql")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
