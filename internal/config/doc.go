// Package config manages storyshots user settings stored in .storyshots.yaml
// in the working directory. Values can be overridden with STORYSHOTS_*
// environment variables and bound command-line flags.
package config
