// Package config loads flowcanvas settings from YAML or JSON files.
//
// A Config wraps the decoded map and offers typed accessors that fall back
// to a default when a key is missing or has the wrong type:
//
//	cfg, err := config.FromFile("flowcanvas.yaml")
//	if err != nil {
//	    return err
//	}
//	addr := cfg.String("addr", ":8080")
//	quiet := cfg.Duration("quiet_period", 180*time.Millisecond)
//
// Settings is the typed view used by the command line tool. LoadSettings
// overlays file values on Defaults:
//
//	s, err := config.LoadSettings("flowcanvas.yaml")
//
// # Durations
//
// Duration values may be strings parsed by time.ParseDuration ("250ms") or
// numbers interpreted as seconds. Both Config.Duration and Config.Decode
// follow this rule.
//
// # File Formats
//
// FromFile picks the parser from the extension: .yaml, .yml or .json,
// compared case-insensitively. Other extensions fail with
// ErrUnsupportedFormat. Environment references ($NAME, ${NAME}) in the file
// are expanded before it is parsed.
package config
