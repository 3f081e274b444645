// Package confloader loads server configuration from layered sources.
//
// Priority order, later overriding earlier: struct defaults, YAML
// file, environment variables, explicit overrides (flags).
package confloader
