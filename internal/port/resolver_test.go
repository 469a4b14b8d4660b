package port

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestResolve_KnownValues pins the hash-to-port mapping so that a change to
// the algorithm (which would move every running demo to a new port) is
// caught immediately.
func TestResolve_KnownValues(t *testing.T) {
	tests := []struct {
		dir  string
		want int
	}{
		{"/home/exedev/shelley", 3179}, // sha256 prefix 7fabd733
		{"/tmp/demo", 3165},            // sha256 prefix 84a8cd7d
		{"/", 3178},                    // sha256 prefix 8a5edab2
		{"", 3610},                     // sha256 prefix e3b0c442
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.dir), func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.dir))
		})
	}
}

// TestResolve_Deterministic verifies repeated calls agree.
func TestResolve_Deterministic(t *testing.T) {
	dir := "/home/exedev/shelley"
	first := Resolve(dir)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Resolve(dir))
	}
}

// TestResolve_Range checks the [3000, 3999] bound over a spread of inputs,
// including unusual strings that are not real paths.
func TestResolve_Range(t *testing.T) {
	inputs := []string{"", " ", "/", "relative/dir", "/päth/ünïcode", "C:\\Windows"}
	for i := 0; i < 2000; i++ {
		inputs = append(inputs, fmt.Sprintf("/home/user/worktrees/wt-%d", i))
	}

	for _, in := range inputs {
		p := Resolve(in)
		assert.GreaterOrEqual(t, p, MinPort, "input %q", in)
		assert.Less(t, p, MinPort+Range, "input %q", in)
	}
}

// TestResolve_Spread sanity-checks that different directories do not all
// collapse to a handful of ports.
func TestResolve_Spread(t *testing.T) {
	seen := make(map[int]struct{})
	for i := 0; i < 200; i++ {
		seen[Resolve(fmt.Sprintf("/srv/checkout-%d", i))] = struct{}{}
	}
	assert.Greater(t, len(seen), 100)
}
