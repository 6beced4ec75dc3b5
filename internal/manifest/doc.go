// Package manifest decodes and validates the catalog manifest (main.js).
// The manifest exports an optional stories list whose entries are either
// plain glob strings or {path, recursive, match} specifiers. Decoded values
// are checked against the JSON Schema embedded from schema/main.schema.json.
package manifest
