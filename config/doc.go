// Package config provides layered configuration management for a host
// application and its plugins.
//
// Configuration is resolved from YAML files merged with prefixed
// environment variable overrides, validated against a typed core schema,
// and served from a process-wide store that supports concurrent reads.
//
// # Features
//
//   - YAML configuration file loading for the core application and for
//     independently configured plugins
//   - Environment variable overrides with CORE_ and PLUGIN_<ID>_ prefixes,
//     including double-underscore nesting (CORE_DB__HOST sets db.host)
//   - Typed core schema with defaults, weak type coercion, and aggregated
//     validation error reporting
//   - Dot-notation Get/Set access to the raw merged mapping
//   - File watching for configuration hot-reload
//   - Optional Prometheus metrics for load and reload outcomes
//
// # Loading
//
// Load the core configuration once at startup:
//
//	mgr := config.Default()
//	if err := mgr.Load(); err != nil {
//	    log.Fatal(err)
//	}
//	core, _ := mgr.CoreConfig()
//
// Load per-plugin configuration any number of times, concurrently with
// reads:
//
//	pc, err := mgr.LoadPluginConfig("fraud-scorer", "fraud-scorer.yaml")
//
// # File Watching
//
// Watch the core file for changes:
//
//	watcher, err := config.NewWatcher(mgr, config.DefaultCoreFile, func(core *config.CoreConfig) {
//	    // Handle configuration update
//	})
//
//	watcher.Start(ctx)
package config
