// Package config loads, validates, and normalizes Boxarr configuration.
//
// Configuration is TOML with a single file resolved from an explicit path,
// ~/.config/boxarr/config.toml, or ./boxarr.toml. Defaults are applied before
// decoding so a partial file only overrides what it names. The loaded Config
// is treated as immutable; the only runtime mutation path is Watch, which
// re-validates the scheduler section and hands the new values to a callback.
package config
