// Package tmux manages the named tmux session that hosts the demo server.
//
// All operations shell out to the tmux binary via os/exec, the same way the
// rest of the CLI drives external tools: tmux owns the server process, and
// this package only ever asks it whether a session of a given name exists,
// creates one, kills one, or hands the terminal over to it.
//
// Session targets are passed as "=name" so tmux matches the name exactly
// instead of treating it as a prefix; without this, a query for
// "shelley-demo-31" would also match "shelley-demo-3179".
package tmux
