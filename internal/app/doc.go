// Package app provides application bootstrap and lifecycle management for sleuth.
//
// It turns a configuration directory into a ready research.Service:
//
//  1. **Bootstrap (`bootstrap.go`)**: logging setup and configuration loading
//  2. **Configuration (`config.go`)**: runtime options chosen on the command line
//  3. **Services (`services.go`)**: store, provider session, capability registry,
//     execution engine, language model and research service
//
// # Configuration Loading
//
// config.yaml is read from the directory given with --config-path, or from
// ~/.config/sleuth when none is given. A missing file selects the defaults.
// Relative store, history and log paths are resolved against that directory.
//
// # Degraded Operation
//
// The provider connection is required unless the application runs offline.
// Offline applications can list and summarize stored sessions; every plan
// step fails with a not-found outcome because the capability snapshot is empty.
//
// The language model is optional. Without an API key the planner and analyzer
// are left out and the research service uses the degenerate single-step plan
// and the raw, counts-only analysis.
//
// # Shutdown
//
// Application.Close disconnects the provider (terminating a stdio subprocess),
// closes the record store and the log file, in that order.
package app
