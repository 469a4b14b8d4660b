package demo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shinji-kodama/shelley-demo/internal/config"
	"github.com/shinji-kodama/shelley-demo/internal/model"
	"github.com/shinji-kodama/shelley-demo/internal/serverconfig"
	"github.com/shinji-kodama/shelley-demo/internal/tmux"
)

// ErrNotRunning is wrapped by the error Logs returns when there is no
// session to attach to.
var ErrNotRunning = errors.New("demo server not running")

// Sessions is the subset of tmux operations the workflows need.
type Sessions interface {
	Exists(ctx context.Context, name string) bool
	Kill(ctx context.Context, name string)
	WaitGone(ctx context.Context, name string, timeout, interval time.Duration) bool
	NewSession(ctx context.Context, name, command string) error
	Attach(name string) error
}

// Builder runs the build step in a directory.
type Builder interface {
	Build(ctx context.Context, dir string) error
}

// Prober reports whether the server answers HTTP on a port.
type Prober interface {
	Check(ctx context.Context, port int) bool
	WaitReady(ctx context.Context, port int, timeout time.Duration) bool
}

// PortChecker reports whether some process is listening on a port.
type PortChecker interface {
	InUse(port int) bool
}

// ConfigChecker inspects the server configuration file before start.
// serverconfig.Check satisfies it.
type ConfigChecker func(path string) []serverconfig.Issue

// Service runs the demo workflows for one project directory.
type Service struct {
	cfg         *config.Config
	sessions    Sessions
	builder     Builder
	prober      Prober
	ports       PortChecker
	checkConfig ConfigChecker
	logger      *slog.Logger
}

// NewService wires a Service. checkConfig may be nil to skip the server
// config preflight.
func NewService(cfg *config.Config, sessions Sessions, builder Builder, prober Prober,
	ports PortChecker, checkConfig ConfigChecker, logger *slog.Logger) *Service {
	return &Service{
		cfg:         cfg,
		sessions:    sessions,
		builder:     builder,
		prober:      prober,
		ports:       ports,
		checkConfig: checkConfig,
		logger:      logger,
	}
}

// StartResult describes the outcome of Start.
type StartResult struct {
	Port    int    `json:"port" yaml:"port"`
	Session string `json:"session" yaml:"session"`
	URL     string `json:"url" yaml:"url"`

	// Replaced is true when an existing session was killed first.
	Replaced bool `json:"replaced" yaml:"replaced"`

	// Healthy is false when the server did not answer within the health
	// timeout. The session is left running either way.
	Healthy bool `json:"healthy" yaml:"healthy"`

	// AttachHint is the command for inspecting the session by hand.
	AttachHint string `json:"attachHint" yaml:"attachHint"`

	// Warnings collects non-fatal problems found along the way.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// StopResult describes the outcome of Stop.
type StopResult struct {
	Port    int    `json:"port" yaml:"port"`
	Session string `json:"session" yaml:"session"`

	// Stopped is true when a running session was killed, false when there
	// was nothing to stop.
	Stopped bool `json:"stopped" yaml:"stopped"`

	// State is the session state after the command.
	State model.SessionState `json:"state" yaml:"state"`
}

// StatusResult describes the outcome of Status.
type StatusResult struct {
	Port       int                `json:"port" yaml:"port"`
	Session    string             `json:"session" yaml:"session"`
	State      model.SessionState `json:"state" yaml:"state"`
	URL        string             `json:"url" yaml:"url"`
	AttachHint string             `json:"attachHint" yaml:"attachHint"`

	// Healthy is only meaningful while running: it reports whether the
	// server answered a single probe.
	Healthy bool `json:"healthy" yaml:"healthy"`

	// PortInUse is set when no session runs but some other process holds
	// the port.
	PortInUse bool `json:"portInUse,omitempty" yaml:"portInUse,omitempty"`
}

// Start builds the server and (re)starts it in a fresh tmux session.
//
// Steps:
//  1. Build in the project directory. Failure is fatal and aborts before
//     tmux is touched.
//  2. Preflight the server config file (warnings only).
//  3. Kill an existing session of the same name and wait, bounded, for it
//     to disappear.
//  4. Warn if some other process still holds the port.
//  5. Create the detached session running the server. Failure is fatal.
//  6. Probe the server. A timeout is a warning, not an error.
func (s *Service) Start(ctx context.Context) (*StartResult, error) {
	port := s.cfg.Port()
	name := s.cfg.SessionName()
	result := &StartResult{
		Port:       port,
		Session:    name,
		URL:        s.cfg.URL(),
		AttachHint: tmux.AttachHint(name),
	}

	s.logger.Info("building shelley", "dir", s.cfg.Dir)
	if err := s.builder.Build(ctx, s.cfg.Dir); err != nil {
		return nil, err
	}
	s.logger.Info("build complete")

	if s.checkConfig != nil {
		for _, issue := range s.checkConfig(s.cfg.ServerConfigPath) {
			result.Warnings = append(result.Warnings, "server config: "+issue.String())
		}
	}

	if s.sessions.Exists(ctx, name) {
		s.logger.Info("killing existing tmux session", "session", name)
		s.sessions.Kill(ctx, name)
		result.Replaced = true
		if !s.sessions.WaitGone(ctx, name, s.cfg.SettleTimeout, s.cfg.SettleInterval) {
			// new-session below will fail on the duplicate name and report it.
			s.logger.Warn("old tmux session still present", "session", name, "waited", s.cfg.SettleTimeout)
		}
	}

	if s.ports.InUse(port) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("port %d is already in use by another process; the server may fail to bind", port))
	}

	s.logger.Info("starting demo server", "port", port, "session", name)
	if err := s.sessions.NewSession(ctx, name, s.cfg.ServerCommand()); err != nil {
		return nil, err
	}

	result.Healthy = s.prober.WaitReady(ctx, port, s.cfg.HealthTimeout)
	if !result.Healthy {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("port %d not responding yet. Check: %s", port, result.AttachHint))
	}
	return result, nil
}

// Stop kills the session if it exists. It never fails: stopping a server
// that is not running just reports so.
func (s *Service) Stop(ctx context.Context) *StopResult {
	name := s.cfg.SessionName()
	result := &StopResult{
		Port:    s.cfg.Port(),
		Session: name,
		State:   model.StateStopped,
	}

	if s.sessions.Exists(ctx, name) {
		s.sessions.Kill(ctx, name)
		result.Stopped = true
	}
	return result
}

// Status reports whether the session is running. It never fails.
func (s *Service) Status(ctx context.Context) *StatusResult {
	name := s.cfg.SessionName()
	port := s.cfg.Port()
	running := s.sessions.Exists(ctx, name)

	result := &StatusResult{
		Port:       port,
		Session:    name,
		State:      model.StateFor(running),
		URL:        s.cfg.URL(),
		AttachHint: tmux.AttachHint(name),
	}

	if running {
		result.Healthy = s.prober.Check(ctx, port)
	} else {
		result.PortInUse = s.ports.InUse(port)
	}
	return result
}

// Port returns the resolved port.
func (s *Service) Port() int {
	return s.cfg.Port()
}

// Logs hands the terminal over to the running session.
//
// When the session exists this does not return on success: the process
// image is replaced by tmux. When it does not exist, Logs returns a
// CLIError with ExitGeneralError wrapping ErrNotRunning and never attempts
// to attach.
func (s *Service) Logs(ctx context.Context) error {
	name := s.cfg.SessionName()
	if !s.sessions.Exists(ctx, name) {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("Not running (no tmux session '%s').", name), ErrNotRunning)
	}
	return s.sessions.Attach(name)
}
