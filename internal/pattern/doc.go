// Package pattern turns story patterns into enumeration directives.
//
// A plain glob such as "../src/**/*.stories.js" is split into a literal base
// directory and a glob remainder; the remainder is translated into an RE2
// expression matched against context keys of the form "./rel/path". The
// result is carried as a serialized regular expression literal ("/.../"), the
// same shape structured specifiers declare in the manifest, and compiled by
// ParseRegexpLiteral.
package pattern
