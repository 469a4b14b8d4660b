// Package build runs the project's build step before the demo server is
// (re)started.
//
// The build tool is invoked synchronously via os/exec in the project
// directory, with its output streamed straight to the user's terminal. A
// failed build aborts the whole start: nothing has been touched in tmux yet,
// so there is no partial state to clean up.
package build
