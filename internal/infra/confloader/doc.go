// Package confloader loads rollcall configuration with koanf.
//
// Sources, highest priority first:
//
//  1. Command-line flags (WithOverrides, dotted keys)
//  2. Environment variables (ROLLCALL_ prefix, "__" between levels; flat
//     ROLLCALL_ names are left to the CLI)
//  3. A YAML configuration file
//  4. Default values already present in the target struct
//
// Watcher reports writes to a watched configuration file so the server
// can re-read settings that are safe to change at runtime.
package confloader
