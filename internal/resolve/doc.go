// Package resolve turns a catalog configuration path into the setup files to
// load and the story contexts to register.
//
// A directory is searched for a preview/config setup file and a main.js
// manifest; the manifest's stories are normalized and handed to an
// Enumerator. Any other path is treated as the sole setup file.
package resolve
