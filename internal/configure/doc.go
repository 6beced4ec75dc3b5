// Package configure applies a catalog configuration to a story registry.
//
// Configure either hands the registry to a caller-supplied function or
// resolves a configuration path, loads its setup files through a
// ModuleLoader and registers the resulting story contexts.
package configure
