// Package logging provides subsystem-tagged structured logging for sleuth.
//
// It is a thin layer over log/slog. Every record carries a "subsystem" attribute
// so output from the registry, executor, provider sessions and console can be
// filtered independently.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Registry", "Discovered %d capabilities", n)
//	logging.Warn("Registry", "Provider does not support resources: %v", err)
//	logging.Error("Engine", err, "Run %s aborted", runID)
//
// Logs always go to stderr (and optionally a file, see InitWithFile) because
// stdout is reserved for command output and for stdio MCP transports.
package logging
