package datasync

// Outcome is the per-record result of an upsert pipeline.
type Outcome int

const (
	Imported Outcome = iota
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Imported:
		return "imported"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result describes what happened to one record.
type Result struct {
	Outcome Outcome
	Created bool
	Reason  string
}

func imported(created bool) Result {
	return Result{Outcome: Imported, Created: created}
}

func skipped(reason string) Result {
	return Result{Outcome: Skipped, Reason: reason}
}

func failed(reason string) Result {
	return Result{Outcome: Failed, Reason: reason}
}
