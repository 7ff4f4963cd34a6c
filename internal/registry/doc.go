// Package registry stores typed site settings grouped by interface name.
//
// Each interface has a schema listing its records, their kinds and defaults.
// Reads of a record that was never written return the schema default; reads
// and writes of records missing from the schema fail with a not-found error.
// Backends keep values in memory, in a watched YAML file or in Redis hashes.
package registry
