// Package output renders CLI results.
//
// Row streams from the server arrive as a *Table; single objects such as
// version or config are structs or maps. Every formatter accepts both:
//
//   - table: aligned columns, key/value pairs for objects
//   - json, yaml: one object per row keyed by lowercased header
package output
