// Package demo implements the workflows behind each CLI action: building
// and (re)starting the demo server in tmux, stopping it, reporting its
// status, and handing the terminal over to its session.
//
// Service depends on small interfaces rather than concrete packages so
// that the workflows can be exercised without tmux, make, or a live
// server. The concrete implementations live in internal/tmux,
// internal/build, internal/health and internal/port.
package demo
