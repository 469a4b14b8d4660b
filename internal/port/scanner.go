package port

import (
	"fmt"
	"net"
)

// Scanner answers whether a TCP port on this host is already bound.
//
// It asks the operating system directly by trying to bind the port, rather
// than parsing /proc/net/* or running `lsof`/`ss`, which may need elevated
// permissions or not be installed at all.
//
// The demo CLI uses it only for diagnostics: a port that is busy while no
// demo session exists means some unrelated process holds it, and the
// server about to be started will fail to bind. Only TCP is checked
// because the Shelley server only serves HTTP.
//
// Scanner is stateless; it is a type rather than a bare function so that
// demo.Service can take it behind its PortChecker interface and tests can
// substitute a fake.
type Scanner struct{}

// NewScanner returns a Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// InUse reports whether some process holds the TCP port.
//
// It binds ":port" (all interfaces, matching how the Shelley server
// listens) and closes the listener again immediately. Any bind failure
// counts as "in use": besides "address already in use" that includes
// ports the current user may not bind, which the server could not bind
// either.
//
// The answer is a snapshot. Another process may take or release the port
// right after the check returns.
func (s *Scanner) InUse(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return true
	}
	_ = listener.Close()
	return false
}
