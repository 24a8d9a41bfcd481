// Package cli implements the command-line interface for ncsl-watch.
//
// The binary is a single cobra root command with no flags: configuration
// comes from the environment so the tool drops into cron or a systemd timer
// unchanged. The package wires config, filter, scraper, storage, and the
// notifiers into watch.Run, prints the rendered digest (or a status line) to
// stdout, and maps the run error to the process exit code.
package cli
