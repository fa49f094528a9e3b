package models

// Lookup fetch states for a book. The state is monotonic: a book moves from
// not_tried to one of the tried states and stays there until an operator
// purge explicitly resets the graph.
const (
	FetchStateNotTried     = "not_tried"
	FetchStateTriedSuccess = "tried_success"
	FetchStateTriedFailed  = "tried_failed"
)
