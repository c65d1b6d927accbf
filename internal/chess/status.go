package chess

import "fmt"

type Outcome string

const (
	OutcomeOngoing Outcome = "ongoing"
	OutcomeWin     Outcome = "win"
	OutcomeDraw    Outcome = "draw"
)

type Reason string

const (
	ReasonCheckmate            Reason = "checkmate"
	ReasonResignation          Reason = "resignation"
	ReasonTimeout              Reason = "timeout"
	ReasonStalemate            Reason = "stalemate"
	ReasonFiftyMoveRule        Reason = "fiftyMoveRule"
	ReasonThreefoldRepetition  Reason = "threefoldRepetition"
	ReasonInsufficientMaterial Reason = "insufficientMaterial"
	ReasonAgreement            Reason = "agreement"
)

// Status is the game result: ongoing, a win for Winner, or a draw. Reason
// explains a finished game.
type Status struct {
	Outcome Outcome `json:"outcome"`
	Winner  Color   `json:"winner,omitempty"`
	Reason  Reason  `json:"reason,omitempty"`
}

func Ongoing() Status {
	return Status{Outcome: OutcomeOngoing}
}

func Win(winner Color, reason Reason) Status {
	return Status{Outcome: OutcomeWin, Winner: winner, Reason: reason}
}

func Draw(reason Reason) Status {
	return Status{Outcome: OutcomeDraw, Reason: reason}
}

func (s Status) IsOngoing() bool {
	return s.Outcome == OutcomeOngoing || s.Outcome == ""
}

// sticky reports whether the status was decided outside the board (a
// resignation, flag fall or agreed draw) and so cannot be re-derived.
func (s Status) sticky() bool {
	switch s.Reason {
	case ReasonResignation, ReasonTimeout, ReasonAgreement:
		return true
	}
	return false
}

func (s Status) String() string {
	switch s.Outcome {
	case OutcomeWin:
		return fmt.Sprintf("%s wins by %s", s.Winner, s.Reason)
	case OutcomeDraw:
		return fmt.Sprintf("draw by %s", s.Reason)
	}
	return "ongoing"
}
