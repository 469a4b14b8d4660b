// Package serverconfig inspects the Shelley server's configuration file
// before the demo server is started.
//
// The server treats its --config file as optional and silently ignores a
// file it cannot parse, which makes a typo look like a missing setting at
// runtime. This package reads the same file ahead of time and turns every
// problem into a human-readable warning. Nothing here is fatal: the start
// workflow prints the warnings and carries on.
//
// Files are read with github.com/tidwall/jsonc so that commented files can
// still be inspected, and then re-checked with the strict encoding/json
// parser the server itself uses.
package serverconfig
