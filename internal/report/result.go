// Package report holds the per-command result records of a buildcheck run
// and renders them to the console.
package report

// Buckets holds the output lines of one command grouped by severity
// marker. A line may appear in more than one bucket.
type Buckets struct {
	Info     []string
	Warnings []string
	Errors   []string
	Debug    []string
}

// CommandResult is the outcome of one executed command string.
type CommandResult struct {
	ID       string // correlates log lines with table rows
	Command  string
	ExitCode int
	Buckets
}

// Pass reports whether the command produced no warning and no error
// lines. The exit code is not considered.
func (r CommandResult) Pass() bool {
	return len(r.Warnings) == 0 && len(r.Errors) == 0
}

// Failed reports whether the command exited non-zero or did not pass.
func (r CommandResult) Failed() bool {
	return r.ExitCode != 0 || !r.Pass()
}

// Summary counts the records of a run.
type Summary struct {
	Total   int
	Passed  int // Pass() is true
	Exited  int // exit code zero
	Failing int // Failed() is true
}

// Summarize counts passing and failing records.
func Summarize(results []CommandResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Pass() {
			s.Passed++
		}
		if r.ExitCode == 0 {
			s.Exited++
		}
		if r.Failed() {
			s.Failing++
		}
	}
	return s
}

// AnyFailed reports whether at least one record failed.
func AnyFailed(results []CommandResult) bool {
	return Summarize(results).Failing > 0
}
