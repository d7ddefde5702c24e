// Package history stores the per-light outcome of every command in the
// command_history SQLite table and reads it back for the history command.
package history
