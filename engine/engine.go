// Package engine launches and supervises a local inference server process,
// waiting for its HTTP endpoint to come up before the first completion is
// attempted.
package engine

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/justrach/cupertino-ink/logging"
)

// Options configures the Controller.
type Options struct {
	// Command and Args launch the server process.
	Command string
	Args    []string

	// Env entries are appended to the inherited environment.
	Env map[string]string

	// HealthURL is polled with GET until it answers 2xx.
	HealthURL string

	// StartupTimeout bounds how long Start waits for the health check.
	StartupTimeout time.Duration

	// PollInterval is the delay between health probes.
	PollInterval time.Duration

	// ShutdownGrace is how long Stop waits after SIGTERM before killing.
	ShutdownGrace time.Duration

	// HTTPClient performs the health probes.
	HTTPClient *http.Client

	// Logger receives lifecycle diagnostics.
	Logger logging.Logger
}

// Controller starts and stops one inference server process.
type Controller struct {
	opts Options

	mu      sync.Mutex
	cmd     *exec.Cmd
	running bool
	exited  chan struct{}
}

// NewController creates a controller. Command and HealthURL are required at
// Start time.
func NewController(optFns ...func(o *Options)) *Controller {
	opts := Options{
		StartupTimeout: 60 * time.Second,
		PollInterval:   500 * time.Millisecond,
		ShutdownGrace:  5 * time.Second,
		HTTPClient:     &http.Client{Timeout: 2 * time.Second},
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 2 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Controller{opts: opts}
}

// Start launches the process and blocks until the health endpoint answers or
// the startup timeout elapses. On timeout the process is stopped again.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	if c.opts.Command == "" {
		c.mu.Unlock()
		return fmt.Errorf("engine: no command configured")
	}
	if c.opts.HealthURL == "" {
		c.mu.Unlock()
		return fmt.Errorf("engine: no health URL configured")
	}

	cmd := exec.Command(c.opts.Command, c.opts.Args...)
	cmd.Env = os.Environ()
	for k, v := range c.opts.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("engine: start %s: %w", c.opts.Command, err)
	}

	exited := make(chan struct{})
	go func() {
		cmd.Wait()
		close(exited)
	}()

	c.cmd = cmd
	c.exited = exited
	c.running = true
	c.mu.Unlock()

	c.opts.Logger.Info("Inference engine starting", "command", c.opts.Command, "pid", cmd.Process.Pid)

	if err := c.waitHealthy(ctx, exited); err != nil {
		c.Stop()
		return err
	}

	c.opts.Logger.Info("Inference engine ready", "health_url", c.opts.HealthURL)

	return nil
}

func (c *Controller) waitHealthy(ctx context.Context, exited <-chan struct{}) error {
	deadline := time.NewTimer(c.opts.StartupTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-exited:
			return fmt.Errorf("engine: process exited before becoming healthy")
		case <-deadline.C:
			return fmt.Errorf("engine: not healthy after %s", c.opts.StartupTimeout)
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.HealthURL, nil)
			if err != nil {
				return fmt.Errorf("engine: build health request: %w", err)
			}
			res, err := c.opts.HTTPClient.Do(req)
			if err != nil {
				continue
			}
			res.Body.Close()
			if res.StatusCode >= 200 && res.StatusCode <= 299 {
				return nil
			}
		}
	}
}

// Stop terminates the process, first with SIGTERM, then with SIGKILL after
// the grace period. Stopping a stopped controller is a no-op.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.cmd == nil || c.cmd.Process == nil {
		c.running = false
		return nil
	}

	c.cmd.Process.Signal(syscall.SIGTERM)

	select {
	case <-c.exited:
	case <-time.After(c.opts.ShutdownGrace):
		c.opts.Logger.Warn("Inference engine did not exit in time, killing", "pid", c.cmd.Process.Pid)
		c.cmd.Process.Kill()
		<-c.exited
	}

	c.running = false
	c.cmd = nil

	c.opts.Logger.Info("Inference engine stopped")

	return nil
}

// Running reports whether the process is alive.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return false
	}
	select {
	case <-c.exited:
		return false
	default:
		return true
	}
}
