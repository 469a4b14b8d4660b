package demo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/shelley-demo/internal/config"
	"github.com/shinji-kodama/shelley-demo/internal/logging"
	"github.com/shinji-kodama/shelley-demo/internal/model"
	"github.com/shinji-kodama/shelley-demo/internal/serverconfig"
)

// fakeSessions is an in-memory tmux stand-in that records every call.
type fakeSessions struct {
	running   map[string]string // name -> command
	calls     []string
	stuck     bool  // Kill leaves the session in place
	createErr error // returned by NewSession
	attached  string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{running: make(map[string]string)}
}

func (f *fakeSessions) Exists(_ context.Context, name string) bool {
	f.calls = append(f.calls, "exists "+name)
	_, ok := f.running[name]
	return ok
}

func (f *fakeSessions) Kill(_ context.Context, name string) {
	f.calls = append(f.calls, "kill "+name)
	if !f.stuck {
		delete(f.running, name)
	}
}

func (f *fakeSessions) WaitGone(_ context.Context, name string, _, _ time.Duration) bool {
	f.calls = append(f.calls, "wait "+name)
	_, ok := f.running[name]
	return !ok
}

func (f *fakeSessions) NewSession(_ context.Context, name, command string) error {
	f.calls = append(f.calls, "new "+name)
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.running[name]; ok {
		return model.NewCLIError(model.ExitGeneralError, "duplicate session: "+name)
	}
	f.running[name] = command
	return nil
}

func (f *fakeSessions) Attach(name string) error {
	f.calls = append(f.calls, "attach "+name)
	f.attached = name
	return nil
}

type fakeBuilder struct {
	err  error
	dirs []string
}

func (f *fakeBuilder) Build(_ context.Context, dir string) error {
	f.dirs = append(f.dirs, dir)
	return f.err
}

type fakeProber struct {
	ready    bool
	waitedOn []int
	timeout  time.Duration
}

func (f *fakeProber) Check(_ context.Context, _ int) bool { return f.ready }

func (f *fakeProber) WaitReady(_ context.Context, port int, timeout time.Duration) bool {
	f.waitedOn = append(f.waitedOn, port)
	f.timeout = timeout
	return f.ready
}

type fakePorts struct{ busy bool }

func (f fakePorts) InUse(int) bool { return f.busy }

// testConfig returns a Config for a fixed directory whose port is 3179.
func testConfig() *config.Config {
	return &config.Config{
		Dir:              "/home/exedev/shelley",
		ServerConfigPath: "/exe.dev/shelley.json",
		DBPath:           "/home/exedev/.config/shelley/shelley.db",
		Hostname:         "phil-dev.exe.xyz",
		Binary:           "/home/exedev/shelley/bin/shelley",
		HealthTimeout:    5 * time.Second,
		SettleTimeout:    2 * time.Second,
		SettleInterval:   50 * time.Millisecond,
	}
}

type fixture struct {
	svc      *Service
	sessions *fakeSessions
	builder  *fakeBuilder
	prober   *fakeProber
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		sessions: newFakeSessions(),
		builder:  &fakeBuilder{},
		prober:   &fakeProber{ready: true},
	}
	f.svc = NewService(testConfig(), f.sessions, f.builder, f.prober, fakePorts{}, nil, logging.NewNop())
	return f
}

func TestStart_FreshSession(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Start(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3179, result.Port)
	assert.Equal(t, "shelley-demo-3179", result.Session)
	assert.Equal(t, "https://phil-dev.exe.xyz:3179/", result.URL)
	assert.Equal(t, "tmux attach -t shelley-demo-3179", result.AttachHint)
	assert.False(t, result.Replaced)
	assert.True(t, result.Healthy)
	assert.Empty(t, result.Warnings)

	assert.Equal(t, []string{"/home/exedev/shelley"}, f.builder.dirs)
	assert.Equal(t, []int{3179}, f.prober.waitedOn)
	assert.Equal(t, 5*time.Second, f.prober.timeout)
	assert.Equal(t,
		"/home/exedev/shelley/bin/shelley --config /exe.dev/shelley.json --db /home/exedev/.config/shelley/shelley.db serve --port 3179",
		f.sessions.running["shelley-demo-3179"])
}

// TestStart_ReplacesExisting verifies that a running session is killed and
// waited on before the new one is created.
func TestStart_ReplacesExisting(t *testing.T) {
	f := newFixture(t)
	f.sessions.running["shelley-demo-3179"] = "old"

	result, err := f.svc.Start(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Replaced)
	assert.Equal(t, []string{
		"exists shelley-demo-3179",
		"kill shelley-demo-3179",
		"wait shelley-demo-3179",
		"new shelley-demo-3179",
	}, f.sessions.calls)
	assert.NotEqual(t, "old", f.sessions.running["shelley-demo-3179"])
}

// TestStart_BuildFailure verifies that a failed build aborts before any
// tmux interaction and keeps the build's exit status.
func TestStart_BuildFailure(t *testing.T) {
	f := newFixture(t)
	f.builder.err = model.WrapCLIError(model.ExitCode(2), "make build failed", errors.New("exit status 2"))

	result, err := f.svc.Start(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitCode(2), cliErr.Code)
	assert.Empty(t, f.sessions.calls, "tmux must not be touched when the build fails")
	assert.Empty(t, f.prober.waitedOn)
}

// TestStart_SessionCreationFailure verifies the second fatal path.
func TestStart_SessionCreationFailure(t *testing.T) {
	f := newFixture(t)
	f.sessions.createErr = model.NewCLIError(model.ExitGeneralError, "failed to create tmux session")

	_, err := f.svc.Start(context.Background())
	require.Error(t, err)
	assert.Empty(t, f.prober.waitedOn, "no probe after a failed session creation")
}

// TestStart_StuckSession verifies that a session that survives the kill
// leads to the duplicate-name failure rather than silently doing nothing.
func TestStart_StuckSession(t *testing.T) {
	f := newFixture(t)
	f.sessions.running["shelley-demo-3179"] = "old"
	f.sessions.stuck = true

	_, err := f.svc.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate session")
}

// TestStart_UnhealthyIsWarning verifies that a probe timeout is reported
// but does not fail the start or remove the session.
func TestStart_UnhealthyIsWarning(t *testing.T) {
	f := newFixture(t)
	f.prober.ready = false

	result, err := f.svc.Start(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Healthy)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "port 3179 not responding yet. Check: tmux attach -t shelley-demo-3179", result.Warnings[0])
	assert.Contains(t, f.sessions.running, "shelley-demo-3179")
}

func TestStart_Warnings(t *testing.T) {
	f := newFixture(t)
	var checkedPath string
	f.svc = NewService(testConfig(), f.sessions, f.builder, f.prober, fakePorts{busy: true},
		func(path string) []serverconfig.Issue {
			checkedPath = path
			return []serverconfig.Issue{{Field: "llm_gateway", Message: "bad"}}
		}, logging.NewNop())

	result, err := f.svc.Start(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/exe.dev/shelley.json", checkedPath)
	require.Len(t, result.Warnings, 2)
	assert.Equal(t, "server config: llm_gateway: bad", result.Warnings[0])
	assert.True(t, strings.HasPrefix(result.Warnings[1], "port 3179 is already in use"))
}

func TestStop(t *testing.T) {
	t.Run("never started", func(t *testing.T) {
		f := newFixture(t)

		result := f.svc.Stop(context.Background())
		assert.False(t, result.Stopped)
		assert.Equal(t, model.StateStopped, result.State)
		assert.Equal(t, "shelley-demo-3179", result.Session)
		assert.NotContains(t, f.sessions.calls, "kill shelley-demo-3179")
	})

	t.Run("running", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.running["shelley-demo-3179"] = "cmd"

		result := f.svc.Stop(context.Background())
		assert.True(t, result.Stopped)
		assert.Equal(t, model.StateStopped, result.State)
		assert.NotContains(t, f.sessions.running, "shelley-demo-3179")
	})
}

// TestStatus_AfterStart verifies that status on a session created by start
// reports running with the correct port in the URL.
func TestStatus_AfterStart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Start(context.Background())
	require.NoError(t, err)

	status := f.svc.Status(context.Background())
	assert.Equal(t, model.StateRunning, status.State)
	assert.Equal(t, 3179, status.Port)
	assert.Equal(t, "https://phil-dev.exe.xyz:3179/", status.URL)
	assert.Equal(t, "tmux attach -t shelley-demo-3179", status.AttachHint)
	assert.True(t, status.Healthy)
	assert.False(t, status.PortInUse)
}

func TestStatus_NotRunning(t *testing.T) {
	f := newFixture(t)
	f.svc = NewService(testConfig(), f.sessions, f.builder, f.prober, fakePorts{busy: true}, nil, logging.NewNop())

	status := f.svc.Status(context.Background())
	assert.Equal(t, model.StateStopped, status.State)
	assert.False(t, status.Healthy)
	assert.True(t, status.PortInUse)
}

func TestPort(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 3179, f.svc.Port())
}

// TestLogs_NotRunning verifies the exit-1 path and that no attach happens.
func TestLogs_NotRunning(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Logs(context.Background())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)
	assert.Equal(t, "Not running (no tmux session 'shelley-demo-3179').", cliErr.Message)
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.Empty(t, f.sessions.attached)
}

func TestLogs_Running(t *testing.T) {
	f := newFixture(t)
	f.sessions.running["shelley-demo-3179"] = "cmd"

	require.NoError(t, f.svc.Logs(context.Background()))
	assert.Equal(t, "shelley-demo-3179", f.sessions.attached)
}
