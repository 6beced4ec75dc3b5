// Package runtime provides the Node.js-backed host services: evaluating a
// manifest with node and checking the installed node version. Loader picks
// the manifest loader named in the user settings.
package runtime
