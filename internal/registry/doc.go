// Package registry provides standalone implementations of the configure
// collaborators: a Recorder that accumulates story contexts and expands them
// into story modules, and a SetupRecorder that records setup files instead
// of executing them.
package registry
