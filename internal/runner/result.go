package runner

// SpawnFailed is the exit code recorded for a step whose process could not
// be started (missing binary, empty argv, invalid working directory). It
// never collides with a real exit: signaled processes report 128+signal.
const SpawnFailed = -1

// Result holds the output of a single process execution.
type Result struct {
	RunID     string // unique identifier for this run
	ExitCode  int    // process exit code, or 128+signal if killed
	Stdout    []byte // captured stdout (may be truncated)
	Stderr    []byte // captured stderr (may be truncated)
	Truncated bool   // true if output exceeded the size cap
}

// CommandOutput is the aggregate outcome of one command string, which may
// have spawned one or two processes.
type CommandOutput struct {
	ExitCode int    // build step code if non-zero, else run step code
	Output   string // merged stderr and stdout, see Runner.RunCommand
	Compound bool   // true if the command contained "&&"
	SpawnErr error  // first spawn failure, if any
}
