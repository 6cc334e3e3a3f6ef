/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package validate checks JSON dumps of the device's fixed-width/flat-text
// on-disk formats (BKMK.BIN, a catalog export) against a JSON Schema, for
// developer tooling and test fixtures. The on-device formats themselves
// are binary/flat-text, never JSON; this package exists purely on the
// tooling side of that boundary.
package validate

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// BookmarkEntrySchema describes the JSON shape of one decoded BKMK.BIN
// slot, as produced by a fixture generator or a debug dump tool.
const BookmarkEntrySchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["filename", "byte_offset", "chapter", "generation"],
	"properties": {
		"filename":    { "type": "string", "maxLength": 32 },
		"byte_offset": { "type": "integer", "minimum": 0 },
		"chapter":     { "type": "integer", "minimum": 0 },
		"generation":  { "type": "integer", "minimum": 0, "maximum": 65535 }
	},
	"additionalProperties": false
}`

// CatalogEntrySchema describes the JSON shape of one catalog export row.
const CatalogEntrySchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["path", "title", "author", "size", "mtime"],
	"properties": {
		"path":   { "type": "string", "minLength": 1 },
		"title":  { "type": "string" },
		"author": { "type": "string" },
		"size":   { "type": "integer", "minimum": 0 },
		"mtime":  { "type": "string", "format": "date-time" }
	},
	"additionalProperties": false
}`

// Result is the outcome of validating one document against a schema.
type Result struct {
	Valid  bool
	Errors []string
}

// Validate checks doc (raw JSON) against schema (a JSON Schema document,
// also raw JSON — one of the *Schema constants above, or a caller-supplied
// one).
func Validate(schema, doc []byte) (Result, error) {
	schemaLoader := gojsonschema.NewBytesLoader(schema)
	docLoader := gojsonschema.NewBytesLoader(doc)

	res, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return Result{}, fmt.Errorf("validate: %w", err)
	}

	out := Result{Valid: res.Valid()}
	for _, e := range res.Errors() {
		out.Errors = append(out.Errors, e.String())
	}
	return out, nil
}

// ValidateBookmarkEntry validates doc against BookmarkEntrySchema.
func ValidateBookmarkEntry(doc []byte) (Result, error) {
	return Validate([]byte(BookmarkEntrySchema), doc)
}

// ValidateCatalogEntry validates doc against CatalogEntrySchema.
func ValidateCatalogEntry(doc []byte) (Result, error) {
	return Validate([]byte(CatalogEntrySchema), doc)
}
