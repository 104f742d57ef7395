package cli

// Exit codes for the releasekit CLI.
// Success and failure are the only two outcomes: scripts branch on the exit
// status, and finer-grained diagnosis belongs in the printed error.
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates the command failed; details are on stderr
	ExitFailure = 1
)
