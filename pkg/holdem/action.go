package holdem

import (
	"encoding/json"
	"fmt"
)

// Action represents an action a player can take on their turn
type Action string

// action constants
const (
	Fold  Action = "fold"
	Check Action = "check"
	Call  Action = "call"
	Raise Action = "raise"
)

var allowedActions = map[Action]bool{
	Fold:  true,
	Check: true,
	Call:  true,
	Raise: true,
}

// ActionFromString returns an action for the given string
// Unknown actions are an illegal move.
func ActionFromString(s string) (Action, error) {
	if _, ok := allowedActions[Action(s)]; ok {
		return Action(s), nil
	}

	return "", fmt.Errorf("%w: unknown action %q", ErrIllegalMove, s)
}

func (a Action) String() string {
	switch a {
	case Fold:
		return "Fold"
	case Check:
		return "Check"
	case Call:
		return "Call"
	case Raise:
		return "Raise"
	}

	return string(a)
}

// MarshalJSON encodes the action into JSON
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}{
		ID:   string(a),
		Name: a.String(),
	})
}

// IsValid returns true if the action is permitted
func (a Action) IsValid() bool {
	_, ok := allowedActions[a]
	return ok
}

// LogMessage returns a message formatted for the log
func (a Action) LogMessage(amount int) string {
	switch a {
	case Fold:
		return "folded"
	case Check:
		return "checked"
	case Call:
		return fmt.Sprintf("called ${%d}", amount)
	case Raise:
		return fmt.Sprintf("raised ${%d}", amount)
	}

	return ""
}
