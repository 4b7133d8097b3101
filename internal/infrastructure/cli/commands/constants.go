package commands

const (
	// DefaultStatsDays is the reporting window for stats and analyze.
	DefaultStatsDays = 7
	// DefaultAnalyzeLimit caps the top-commands listing.
	DefaultAnalyzeLimit = 10

	formatTable = "table"
	formatJSON  = "json"
)

// ExitCodeError mirrors the wrapped command's exit code through main.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return "command exited nonzero"
}
