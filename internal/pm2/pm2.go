// Package pm2 wraps the PM2 process manager commands the tool needs:
// process detection, restart, and log tailing. All commands use exec.Command
// with explicit argv, never shell strings.
package pm2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/creack/pty"
)

const pm2Bin = "pm2"

// Restarter is the process-control capability the editing flows depend on.
// Injecting it keeps the core logic testable without a live PM2.
type Restarter interface {
	Detect() (string, error)
	Restart(name string) error
}

// Command execution hooks, overridable in tests to mock system commands.
var (
	// pm2Run executes a pm2 subcommand, returns trimmed combined output.
	pm2Run = func(args ...string) (string, error) {
		out, err := exec.Command(pm2Bin, args...).CombinedOutput()
		return strings.TrimSpace(string(out)), err
	}

	// pm2JList returns the raw `pm2 jlist` JSON.
	pm2JList = func() ([]byte, error) {
		return exec.Command(pm2Bin, "jlist").Output()
	}
)

// Client talks to the local PM2 daemon.
type Client struct {
	// Fallback is returned by Detect when no MagicMirror process is found.
	Fallback string
}

// New returns a Client with the given fallback process name.
func New(fallback string) *Client {
	return &Client{Fallback: fallback}
}

// process is the subset of the pm2 jlist entry we need.
type process struct {
	Name   string `json:"name"`
	PM2Env struct {
		ExecPath string `json:"pm_exec_path"`
	} `json:"pm2_env"`
}

// knownNames are common PM2 process names for MagicMirror installs.
var knownNames = map[string]bool{
	"magicmirror":  true,
	"mm":           true,
	"magic-mirror": true,
}

// Detect queries `pm2 jlist` and matches a MagicMirror process by exec path
// or by a common process name, falling back to Fallback when PM2 cannot be
// queried or nothing matches.
func (c *Client) Detect() (string, error) {
	data, err := pm2JList()
	if err != nil {
		return c.Fallback, fmt.Errorf("querying pm2: %w", err)
	}

	var procs []process
	if err := json.Unmarshal(data, &procs); err != nil {
		return c.Fallback, fmt.Errorf("parsing pm2 jlist: %w", err)
	}

	for _, p := range procs {
		if strings.Contains(strings.ToLower(p.PM2Env.ExecPath), "magicmirror") {
			return p.Name, nil
		}
		if knownNames[strings.ToLower(p.Name)] {
			return p.Name, nil
		}
	}

	return c.Fallback, nil
}

// Restart restarts the named PM2 process.
func (c *Client) Restart(name string) error {
	out, err := pm2Run("restart", name)
	if err != nil {
		return fmt.Errorf("pm2 restart %s: %s: %w", name, out, err)
	}
	return nil
}

// Logs attaches `pm2 logs <name>` under a pty and copies its output to w
// until the context is done. The pty keeps PM2's colorized, line-buffered
// output intact.
func (c *Client) Logs(ctx context.Context, name string, w io.Writer) error {
	cmd := exec.CommandContext(ctx, pm2Bin, "logs", name)

	f, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("starting pm2 logs: %w", err)
	}
	defer f.Close()

	go func() {
		<-ctx.Done()
		f.Close()
	}()

	// The pty read fails when the child exits or the context closes the fd.
	if _, err := io.Copy(w, f); err != nil && ctx.Err() == nil {
		return fmt.Errorf("streaming pm2 logs: %w", err)
	}
	cmd.Wait()
	return nil
}
