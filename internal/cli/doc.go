// Package cli defines the Cobra command tree for the storyshots CLI. Each
// file registers one top-level command with the root command. Commands
// delegate to internal packages for resolution and configuration and only
// handle flag parsing and output formatting.
package cli
