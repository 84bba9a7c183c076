// Package config loads and persists the engine's tunable settings as
// JSON. Parsing tolerates unknown keys and fills absent settings with
// defaults, so configurations written by newer versions still load.
//
// Recognized keys:
//
//	{
//	  "undo_depth": 1000,
//	  "tab_width": 4,
//	  "line_ending": "lf",
//	  "snapshot_max_age": "1h",
//	  "snapshot_keep": 64,
//	  "debug_checks": false
//	}
package config
