// Package console implements the interactive research shell.
//
// The console reads commands with readline, offering history and tab
// completion for command names, capability kinds and stored session IDs.
// Commands are registered in a Registry and drive a research Service:
//
//	search <query>      plan, run and analyze a query
//	status              statistics of the current session
//	summary, analyze    findings of the current session
//	save, load, clear   manage the current session
//	sessions            list stored sessions
//	capabilities        list provider capabilities
//	refresh             re-discover provider capabilities
package console
