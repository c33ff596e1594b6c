package holdem

// UserError is an error that is safe to return in a response
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// ErrIllegalMove is returned when an action breaks the betting rules
// No state is changed when it is returned.
const ErrIllegalMove = UserError("illegal move")

// precondition errors
const (
	ErrGameNotFound      = UserError("game does not exist")
	ErrGameNotStarted    = UserError("game has not started")
	ErrPlayerNotInGame   = UserError("you are not in this game")
	ErrNotYourTurn       = UserError("it is not your turn")
	ErrGameFull          = UserError("too many players, choose another game")
	ErrDuplicateUsername = UserError("username already exists in this game")
	ErrInvalidUsername   = UserError("username must be 1-12 letters, digits, dashes or underscores")
	ErrInvalidAvatar     = UserError("avatar id must be in the range [1, 10]")
)
