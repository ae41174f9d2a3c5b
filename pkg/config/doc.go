// Package config loads the shorpost YAML configuration.
//
// A configuration file has three sections:
//
//	engine:
//	  max_outcomes: 0        # 0 tries every outcome
//	  max_expansion_steps: 0 # 0 uses the default continued-fraction cap
//	  multiple_search: 0     # try k·q for small k when q alone fails
//	  min_count: 0
//	  concurrency: 4
//	store:
//	  enabled: true
//	  path: shorpost.db
//	telemetry:
//	  logging:
//	    level: info
//	    format: console
//
// Values not present in the file keep their defaults. SHORPOST_LOG_LEVEL and
// SHORPOST_DB override the log level and database path.
package config
