// Package runner executes build commands within a workspace boundary and
// captures their output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
	log "github.com/sirupsen/logrus"
)

// Separator joins the build step and the run step of a compound command.
const Separator = "&&"

// DefaultShell interprets the run step of a compound command.
const DefaultShell = "sh"

// Runner executes commands within a workspace boundary.
type Runner struct {
	Workspace string
	Timeout   time.Duration // zero means no timeout
	MaxOutput int           // bytes per stream; zero means unbounded
	Shell     string        // defaults to DefaultShell
	Log       log.FieldLogger
}

// Run executes a command with the given argv. The first element is the
// binary name (resolved via PATH), and the rest are arguments.
// cwd is resolved relative to the workspace root and must remain within it.
// A non-zero exit is not an error; failing to start the process is.
// A process killed by a signal reports 128 plus the signal number.
func (r *Runner) Run(ctx context.Context, argv []string, cwd string) (*Result, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty argv")
	}

	dir, err := r.resolveDir(cwd)
	if err != nil {
		return nil, err
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	runID := uuid.New().String()
	r.logger().WithFields(log.Fields{
		"run_id": runID,
		"argv":   shellquote.Join(argv...),
	}).Debug("Spawning process")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	if r.MaxOutput > 0 {
		cmd.Stdout = &limitWriter{buf: &stdout, limit: r.MaxOutput}
		cmd.Stderr = &limitWriter{buf: &stderr, limit: r.MaxOutput}
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	runErr := cmd.Run()

	truncated := r.MaxOutput > 0 && (stdout.Len() >= r.MaxOutput || stderr.Len() >= r.MaxOutput)

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitStatus(exitErr)
		} else {
			// Binary not found or other exec error.
			return nil, fmt.Errorf("executing %s: %w", argv[0], runErr)
		}
	}

	return &Result{
		RunID:     runID,
		ExitCode:  exitCode,
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		Truncated: truncated,
	}, nil
}

// RunShell executes script through the configured shell with "-c".
func (r *Runner) RunShell(ctx context.Context, script, cwd string) (*Result, error) {
	shell := r.Shell
	if shell == "" {
		shell = DefaultShell
	}
	return r.Run(ctx, []string{shell, "-c", script}, cwd)
}

// RunCommand executes one command string in cwd, which is resolved like
// Run's.
//
// A simple command is split on whitespace and run once; its output is
// stderr followed by stdout. A compound command ("build && run") runs the
// build step split on whitespace, then the run step through the shell,
// whether or not the build step succeeded. Its output is build stderr,
// run stderr, build stdout, run stdout, concatenated in that order. The
// exit code is the build step's if non-zero, else the run step's.
//
// A step that cannot be started counts as exit code SpawnFailed with no
// output; RunCommand itself only fails on an empty command.
func (r *Runner) RunCommand(ctx context.Context, command, cwd string) (*CommandOutput, error) {
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("empty command")
	}

	build, run, compound := SplitCompound(command)
	if !compound {
		res, err := spawned(r.Run(ctx, strings.Fields(command), cwd))
		return &CommandOutput{
			ExitCode: res.ExitCode,
			Output:   string(res.Stderr) + string(res.Stdout),
			SpawnErr: err,
		}, nil
	}

	buildRes, buildErr := spawned(r.Run(ctx, strings.Fields(build), cwd))
	runRes, runErr := spawned(r.RunShell(ctx, run, cwd))

	exitCode := buildRes.ExitCode
	if exitCode == 0 {
		exitCode = runRes.ExitCode
	}
	spawnErr := buildErr
	if spawnErr == nil {
		spawnErr = runErr
	}

	var out strings.Builder
	out.Write(buildRes.Stderr)
	out.Write(runRes.Stderr)
	out.Write(buildRes.Stdout)
	out.Write(runRes.Stdout)

	return &CommandOutput{
		ExitCode: exitCode,
		Output:   out.String(),
		Compound: true,
		SpawnErr: spawnErr,
	}, nil
}

// spawned turns a spawn failure into a SpawnFailed result, keeping the error.
func spawned(res *Result, err error) (*Result, error) {
	if err != nil {
		return &Result{ExitCode: SpawnFailed}, err
	}
	return res, nil
}

func exitStatus(exitErr *exec.ExitError) int {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return exitErr.ExitCode()
}

// SplitCompound splits command on Separator. build is the text before the
// first separator and run the trimmed text after the last one; segments in
// between are dropped. ok is false when command has no separator.
func SplitCompound(command string) (build, run string, ok bool) {
	first := strings.Index(command, Separator)
	if first < 0 {
		return "", "", false
	}
	last := strings.LastIndex(command, Separator)
	return command[:first], strings.TrimSpace(command[last+len(Separator):]), true
}

func (r *Runner) logger() log.FieldLogger {
	if r.Log != nil {
		return r.Log
	}
	return log.StandardLogger()
}

// resolveDir resolves cwd relative to the workspace and validates it
// is within the workspace boundary.
func (r *Runner) resolveDir(cwd string) (string, error) {
	if cwd == "" {
		return r.Workspace, nil
	}

	var dir string
	if filepath.IsAbs(cwd) {
		dir = filepath.Clean(cwd)
	} else {
		dir = filepath.Clean(filepath.Join(r.Workspace, cwd))
	}

	rel, err := filepath.Rel(r.Workspace, dir)
	if err != nil {
		return "", fmt.Errorf("resolving cwd: %w", err)
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("cwd %q is outside workspace %q", cwd, r.Workspace)
	}
	return dir, nil
}

// limitWriter writes up to limit bytes to buf, then silently discards the rest.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil // discard
	}
	if len(p) > remaining {
		// Report all bytes as consumed to avoid short write errors from io.Copy.
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
