package timesheet

// CanTransition checks a workflow move against the state machine.
// PENDING, REJECTED and REVISED may each move to APPROVED, REJECTED or
// REVISED; APPROVED is terminal. Revision is deliberately reachable from
// PENDING as well as REJECTED, matching validator practice of sending an
// untouched entry back for rework.
func CanTransition(from, to EntryStatus) error {
	if from == StatusApproved {
		return ErrInvalidTransition
	}
	switch to {
	case StatusApproved, StatusRejected, StatusRevised:
		return nil
	}
	return ErrInvalidTransition
}
