package transaction

import "fmt"

// transitions is the full set of legal state changes. Anything absent is
// illegal and gets rejected by Next, which is what keeps duplicate and
// out-of-order gateway reports from corrupting a settled transaction.
var transitions = map[State][]State{
	StateCreated:   {StateSubmitted},
	StateSubmitted: {StatePending, StateRejected, StateSuccess, StateFailed, StateExpired},
	StatePending:   {StateSuccess, StateFailed, StateExpired},
	// The one documented exception to terminal stickiness: a late
	// authoritative report may settle an expired transaction. Once settled
	// the state is Success/Failed, so the exception cannot fire twice.
	StateExpired:  {StateSuccess, StateFailed},
	StateRejected: {},
	StateSuccess:  {},
	StateFailed:   {},
}

// Next validates the proposed transition. It is a pure function of
// (current, proposed); callers hold the transaction lock while applying its
// result. Proposing the current state again is reported as a no-op, not an
// error, so idempotent re-application of the same report stays silent.
func Next(current, proposed State) (noop bool, err error) {
	if current == proposed {
		return true, nil
	}

	for _, s := range transitions[current] {
		if s == proposed {
			return false, nil
		}
	}

	return false, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, proposed)
}

// StateFromRemote maps a gateway-reported state onto the local machine's
// vocabulary.
func StateFromRemote(remote string) (State, bool) {
	switch remote {
	case "pending":
		return StatePending, true
	case "success":
		return StateSuccess, true
	case "failed":
		return StateFailed, true
	}

	return "", false
}
