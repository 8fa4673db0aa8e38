// Package daemon coordinates the long-running Boxarr process.
//
// It wires configuration, the run journal, the history store, and the
// scheduler into a single lifecycle with flock-based locking to prevent
// multiple instances. The daemon also runs the config watcher so scheduler
// timing edits take effect without a restart.
//
// Keep orchestration logic here: reconciliation semantics live in the
// scheduler package while the daemon focuses on startup, shutdown, and
// high level coordination.
package daemon
