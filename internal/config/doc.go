// Package config loads and validates the kallisto configuration file.
//
// Configuration lives in a TOML file (default ~/.config/kallisto/config.toml)
// and is split into sections: [paths] for directories and the API bind
// address, [cleaning] for the page lock TTL and transcript naming, and
// [logging] for log output. Load applies defaults, expands ~ in paths, and
// validates the result; callers receive a fully normalized Config.
package config
