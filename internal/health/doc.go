// Package health polls the demo server over HTTP until it answers.
//
// A probe succeeds as soon as any HTTP response arrives, whatever its
// status code: the question is whether the server is accepting
// connections, not whether the root page is healthy. Connection errors
// while the server is still starting are expected and never surface as
// errors; the prober only ever reports true or false.
package health
