// Package port derives the demo server's port from the project directory
// and checks whether that port is free on the host.
//
// The core algorithm is a truncated hash reduced into a fixed range:
//
//	port = 3000 + (int(sha256(dir)[:8 hex chars], 16) % 1000)
//
// The same directory always yields the same port, so every subcommand
// agrees on the port (and therefore the tmux session name) without any
// state file. Distinct directories may collide; nothing tries to prevent
// that.
package port
