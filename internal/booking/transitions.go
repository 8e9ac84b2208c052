package booking

import "github.com/iliyamo/restaurant-reservation/internal/model"

// transitions is the reservation lifecycle graph.  Cancellation is
// reachable from every non-terminal state; no_show only applies once
// a reservation was confirmed.  Terminal states have no outgoing
// edges, which makes them final by construction.
var transitions = map[string][]string{
    model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
    model.StatusConfirmed: {model.StatusSeated, model.StatusCancelled, model.StatusNoShow},
    model.StatusSeated:    {model.StatusCompleted, model.StatusCancelled, model.StatusNoShow},
    model.StatusCompleted: {},
    model.StatusCancelled: {},
    model.StatusNoShow:    {},
}

// CanTransition reports whether moving a reservation from one status
// to another is an edge of the lifecycle graph.
func CanTransition(from, to string) bool {
    for _, next := range transitions[from] {
        if next == to {
            return true
        }
    }
    return false
}

// Transition validates a status change and returns the new status.
// It never mutates anything: persisting the returned value is the
// caller's job, so no hidden state change can ride along with a save.
func Transition(from, to string) (string, error) {
    if !CanTransition(from, to) {
        return "", ErrInvalidTransition
    }
    return to, nil
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(status string) bool {
    next, ok := transitions[status]
    return ok && len(next) == 0
}
