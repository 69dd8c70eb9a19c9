// Package config stores rollcall-cli preferences in ~/.rollcall/cli.yaml.
//
// Values from the file apply only when neither a flag nor its ROLLCALL_*
// environment variable is set.
package config
