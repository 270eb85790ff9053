// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema and
// decodes them into Go values.
//
// Parsing always follows the same steps: compile the schema, compile the user
// document and unify it with the schema definition, then validate and decode.
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[map[string]any](schema, data, "#Config",
//	    cueutil.WithFilename(path), cueutil.WithConcrete(false))
//
// Errors carry the file name and the JSON-style path of the offending field,
// e.g. "config.cue: wsl.mount_root: invalid value".
package cueutil
