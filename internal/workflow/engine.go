// Package workflow drives a buildcheck run: it executes each configured
// command in order, classifies its output and collects one result record
// per command.
package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deixis/buildcheck/internal/config"
	"github.com/deixis/buildcheck/internal/report"
	"github.com/deixis/buildcheck/internal/runner"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CommandRunner executes commands within a workspace.
// Implemented by runner.Runner.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, cwd string) (*runner.Result, error)
	RunCommand(ctx context.Context, command, cwd string) (*runner.CommandOutput, error)
}

// Engine holds shared dependencies for a run.
type Engine struct {
	Config    *config.Config
	Runner    CommandRunner
	Printer   *report.Printer
	Workspace string // root of the build workspace; nothing runs outside it
	Dir       string // commands run here and the cache dir is relative to it; defaults to Workspace
	Log       log.FieldLogger
}

// Run executes commands sequentially and returns one record per command,
// in input order. Each command is announced with a banner and its
// non-empty buckets are printed once it has finished. A command that
// fails or cannot be started does not stop the run.
//
// Run fails without executing anything if a command is blank, and stops
// early with the records collected so far if ctx is cancelled.
func (e *Engine) Run(ctx context.Context, commands []string) ([]report.CommandResult, error) {
	for i, command := range commands {
		if strings.TrimSpace(command) == "" {
			return nil, fmt.Errorf("command %d is empty", i+1)
		}
	}

	results := make([]report.CommandResult, 0, len(commands))
	for _, command := range commands {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("run interrupted after %d of %d commands: %w", len(results), len(commands), err)
		}

		if e.Config.ClearCache {
			e.clearCache(ctx)
		}

		result, err := e.runCommand(ctx, command)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (e *Engine) runCommand(ctx context.Context, command string) (report.CommandResult, error) {
	id := uuid.New().String()
	logger := e.logger().WithFields(log.Fields{"id": id, "command": command})

	e.Printer.Banner(command)
	logger.Debug("Starting command")

	out, err := e.Runner.RunCommand(ctx, command, e.Dir)
	if err != nil {
		return report.CommandResult{}, fmt.Errorf("running %q: %w", command, err)
	}
	if out.SpawnErr != nil {
		logger.WithFields(log.Fields{"error": out.SpawnErr}).Error("Command could not be started")
	}

	buckets := Classify(out.Output)
	e.Printer.Buckets(buckets)

	logger.WithFields(log.Fields{
		"exit_code": out.ExitCode,
		"warnings":  len(buckets.Warnings),
		"errors":    len(buckets.Errors),
	}).Info("Command complete")

	return report.CommandResult{
		ID:       id,
		Command:  command,
		ExitCode: out.ExitCode,
		Buckets:  buckets,
	}, nil
}

// clearCache runs "<tool> clean" and then removes the configured output
// directory. Both steps are best effort.
func (e *Engine) clearCache(ctx context.Context) {
	logger := e.logger()

	argv := []string{e.Config.CacheTool(), "clean"}
	res, err := e.Runner.Run(ctx, argv, e.Dir)
	switch {
	case err != nil:
		logger.WithFields(log.Fields{"error": err}).Debug("Cache clean could not be started")
	case res.ExitCode != 0:
		logger.WithFields(log.Fields{"exit_code": res.ExitCode}).Debug("Cache clean failed")
	}

	dir, err := e.cacheDir()
	if err != nil {
		logger.WithFields(log.Fields{"error": err}).Warn("Skipping cache directory removal")
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		logger.WithFields(log.Fields{"dir": dir, "error": err}).Debug("Cache directory removal failed")
	}
}

// cacheDir resolves the configured cache directory against the working
// directory. It refuses the working directory itself, the workspace root
// and anything outside the workspace.
func (e *Engine) cacheDir() (string, error) {
	root, err := filepath.Abs(e.Workspace)
	if err != nil {
		return "", fmt.Errorf("resolving workspace: %w", err)
	}
	base := root
	if e.Dir != "" {
		if base, err = filepath.Abs(e.Dir); err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
	}
	dir := filepath.Clean(filepath.Join(base, e.Config.CacheDir()))
	if dir == base {
		return "", fmt.Errorf("cache dir %q is the working directory", e.Config.CacheDir())
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return "", fmt.Errorf("resolving cache dir: %w", err)
	}
	if rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("cache dir %q is not inside workspace %q", e.Config.CacheDir(), root)
	}
	return dir, nil
}

func (e *Engine) logger() log.FieldLogger {
	if e.Log != nil {
		return e.Log
	}
	return log.StandardLogger()
}
