package ingest

import "fmt"

// State is the progress of a run.
type State int

const (
	Uninitialized State = iota
	SchemaReady
	BankSeeded
	Ingesting
	Complete
)

var stateNames = [...]string{
	Uninitialized: "Uninitialized",
	SchemaReady:   "SchemaReady",
	BankSeeded:    "BankSeeded",
	Ingesting:     "Ingesting",
	Complete:      "Complete",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}
