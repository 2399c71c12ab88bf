// Package config defines configuration structures for the fetch CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (FETCH_ prefix)
//   - YAML configuration file
//
// Precedence is flags over environment over file over defaults; merging is
// explicit via Config.Merge.
package config
