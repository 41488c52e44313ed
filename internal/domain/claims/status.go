package claims

// Operation names a status-changing action on a claim.
type Operation string

const (
	OpSubmit            Operation = "submit"
	OpVet               Operation = "vet"
	OpApprove           Operation = "approve"
	OpReject            Operation = "reject"
	OpQuery             Operation = "query"
	OpMarkPaid          Operation = "mark_paid"
	OpMarkPartiallyPaid Operation = "mark_partially_paid"
)

// transition describes one row of the status state machine: the set of
// source states an operation accepts and the state it lands in.
type transition struct {
	sources map[Status]bool
	target  Status
}

// transitions is the full state machine. Guards consult this table before
// any mutation; it is never inferred from data and no operation may skip
// intermediate states.
var transitions = map[Operation]transition{
	OpSubmit: {
		sources: map[Status]bool{StatusDraft: true},
		target:  StatusSubmitted,
	},
	OpVet: {
		sources: map[Status]bool{StatusSubmitted: true},
		target:  StatusPendingVetting,
	},
	OpApprove: {
		sources: map[Status]bool{StatusPendingVetting: true, StatusUnderReview: true, StatusQueried: true},
		target:  StatusAwaitingPay,
	},
	OpReject: {
		sources: map[Status]bool{StatusSubmitted: true, StatusPendingVetting: true, StatusUnderReview: true},
		target:  StatusRejected,
	},
	OpQuery: {
		sources: map[Status]bool{StatusSubmitted: true, StatusPendingVetting: true, StatusUnderReview: true},
		target:  StatusQueried,
	},
	OpMarkPaid: {
		sources: map[Status]bool{StatusAwaitingPay: true},
		target:  StatusPaid,
	},
	// Re-entrant: additional partial payments keep the claim in
	// partially_paid.
	OpMarkPartiallyPaid: {
		sources: map[Status]bool{StatusAwaitingPay: true, StatusPartiallyPaid: true},
		target:  StatusPartiallyPaid,
	},
}

// CanTransition reports whether op is legal from the given status and, if
// so, the resulting status.
func CanTransition(from Status, op Operation) (Status, bool) {
	t, ok := transitions[op]
	if !ok || !t.sources[from] {
		return "", false
	}
	return t.target, true
}

// AllowedSources returns the source statuses from which op is legal.
func AllowedSources(op Operation) []Status {
	t, ok := transitions[op]
	if !ok {
		return nil
	}
	out := make([]Status, 0, len(t.sources))
	for s := range t.sources {
		out = append(out, s)
	}
	return out
}
