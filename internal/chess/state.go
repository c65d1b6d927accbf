package chess

// CastlingRights are the four independent castling flags. A right, once
// lost, never comes back.
type CastlingRights struct {
	WhiteKingSide  bool `json:"whiteKingSide"`
	WhiteQueenSide bool `json:"whiteQueenSide"`
	BlackKingSide  bool `json:"blackKingSide"`
	BlackQueenSide bool `json:"blackQueenSide"`
}

// AllCastlingRights is the opening set of rights.
var AllCastlingRights = CastlingRights{true, true, true, true}

// Has reports the right of color on the king side (kingSide) or queen side.
func (r CastlingRights) Has(c Color, kingSide bool) bool {
	switch {
	case c == White && kingSide:
		return r.WhiteKingSide
	case c == White:
		return r.WhiteQueenSide
	case kingSide:
		return r.BlackKingSide
	default:
		return r.BlackQueenSide
	}
}

// revokeSquare drops the right tied to a king or rook home square. Any move
// starting or ending there removes the right.
func (r *CastlingRights) revokeSquare(pos Position) {
	switch pos {
	case Sq(0, 4):
		r.WhiteKingSide, r.WhiteQueenSide = false, false
	case Sq(0, 7):
		r.WhiteKingSide = false
	case Sq(0, 0):
		r.WhiteQueenSide = false
	case Sq(7, 4):
		r.BlackKingSide, r.BlackQueenSide = false, false
	case Sq(7, 7):
		r.BlackKingSide = false
	case Sq(7, 0):
		r.BlackQueenSide = false
	}
}

// EnPassant names the file a pawn just double-stepped on and that pawn's
// color. It is valid for exactly one reply.
type EnPassant struct {
	File  int   `json:"file"`
	Color Color `json:"color"`
}

// PendingPromotion marks a pawn waiting on the last rank for its piece
// choice. While set, no ordinary move is accepted.
type PendingPromotion struct {
	File  int   `json:"file"`
	Color Color `json:"color"`
}

// Square returns the square of the waiting pawn.
func (p PendingPromotion) Square() Position {
	return Sq(p.Color.Opposite().homeRow(), p.File)
}

// MatchState is everything besides piece placement that decides legality.
type MatchState struct {
	Turn           Color             `json:"turn"`
	Castling       CastlingRights    `json:"castling"`
	EnPassant      *EnPassant        `json:"enPassant"`
	Promotion      *PendingPromotion `json:"promotion"`
	HalfMoveClock  int               `json:"halfMoveClock"`
	FullMoveNumber int               `json:"fullMoveNumber"`
	Status         Status            `json:"status"`
}

// NewMatchState is the state of a fresh game.
func NewMatchState() *MatchState {
	return &MatchState{
		Turn:           White,
		Castling:       AllCastlingRights,
		FullMoveNumber: 1,
		Status:         Ongoing(),
	}
}

func (s *MatchState) clone() *MatchState {
	c := *s
	if s.EnPassant != nil {
		ep := *s.EnPassant
		c.EnPassant = &ep
	}
	if s.Promotion != nil {
		pp := *s.Promotion
		c.Promotion = &pp
	}
	return &c
}
