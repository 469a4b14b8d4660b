package port

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScanner_InUse verifies both answers: a port held by a listener is in
// use, and the same port is free again once the listener is closed.
func TestScanner_InUse(t *testing.T) {
	s := NewScanner()

	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	held := ln.Addr().(*net.TCPAddr).Port

	assert.True(t, s.InUse(held), "port %d is held by the test", held)

	require.NoError(t, ln.Close())
	assert.False(t, s.InUse(held), "port %d was released", held)
}

// TestScanner_InUseLeavesPortFree verifies that the check itself does not
// keep the port bound.
func TestScanner_InUseLeavesPortFree(t *testing.T) {
	s := NewScanner()

	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	require.False(t, s.InUse(port))

	again, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	require.NoError(t, err, "port must be bindable after InUse returns")
	_ = again.Close()
}
