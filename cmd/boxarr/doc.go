// Command boxarr is the management CLI for the Boxarr daemon: trigger
// reconciliation runs, inspect run history, test title matching, and
// manage configuration.
package main
