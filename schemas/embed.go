// Package schemas embeds the JSON Schemas for structured data exchanged with
// the language model.
package schemas

import "embed"

// OptimizedResume is the schema file for optimizer responses.
const OptimizedResume = "optimized_resume.schema.json"

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
