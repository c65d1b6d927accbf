package chess

import (
	"errors"
	"fmt"
)

// Move rejections. All of these leave the game untouched.
var (
	ErrOutOfBounds           = errors.New("square out of bounds")
	ErrEmptySource           = errors.New("no piece at start square")
	ErrWrongSideToMove       = errors.New("piece belongs to the side not on move")
	ErrOccupiedByOwnColor    = errors.New("end square occupied by own piece")
	ErrShapeIllegal          = errors.New("piece cannot move that way")
	ErrLeavesKingInCheck     = errors.New("move leaves own king in check")
	ErrPromotionPending      = errors.New("promotion pending")
	ErrGameAlreadyOver       = errors.New("game is over")
	ErrNoPromotionPending    = errors.New("no promotion pending")
	ErrWrongSideForPromotion = errors.New("promotion belongs to the other side")
	ErrInvalidPromotion      = errors.New("invalid promotion piece")
)

// Board corruption. These never occur while every mutation goes through
// Apply/Revert, and are surfaced rather than treated as "not in check".
var (
	ErrKingNotFound  = errors.New("king not found")
	ErrMultipleKings = errors.New("multiple kings found")
)

var (
	ErrInvalidSquare = errors.New("invalid square")
	ErrInvalidFEN    = errors.New("invalid FEN")
)

// MoveError records which move was rejected. It unwraps to one of the
// sentinel errors above.
type MoveError struct {
	From Position
	To   Position
	Err  error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %s-%s: %v", e.From, e.To, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

func moveError(from, to Position, err error) error {
	return &MoveError{From: from, To: to, Err: err}
}

// IsCorruption reports whether err signals an inconsistent board rather
// than an ordinary rejection.
func IsCorruption(err error) bool {
	return errors.Is(err, ErrKingNotFound) || errors.Is(err, ErrMultipleKings)
}
