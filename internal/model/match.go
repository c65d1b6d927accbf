package model

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

var (
	ErrGameFull                = errors.New("game is full")
	ErrNotInGame               = errors.New("player not in game")
	ErrWaitingForOpponent      = errors.New("waiting for an opponent")
	ErrNotYourTurn             = errors.New("not your turn")
	ErrTimeExpired             = errors.New("time expired")
	ErrPromotionChoiceRequired = errors.New("promotion piece required")
	ErrNoDrawOffer             = errors.New("no draw offer from the opponent")
	ErrAlreadyConnected        = errors.New("player already connected")
)

// DefaultClock is the time each side starts with.
const DefaultClock = 10 * time.Minute

// Match is one hosted game: the engine, two seats with clocks, a pending
// draw offer and the connections watching it. The engine is single-writer,
// so every call goes through mu.
type Match struct {
	ID          string
	mu          sync.Mutex
	game        *chess.Game
	white       seat
	black       seat
	drawOffer   chess.Color
	connections *GameConnections
	startedAt   time.Time
	announced   bool
	onFinish    func(Record)
	now         func() time.Time
}

type MatchOption func(*matchConfig)

type matchConfig struct {
	clock    time.Duration
	game     *chess.Game
	onFinish func(Record)
	now      func() time.Time
}

// WithClock sets the time each side starts with.
func WithClock(d time.Duration) MatchOption {
	return func(c *matchConfig) { c.clock = d }
}

// WithGame starts the match from an existing game instead of the opening.
func WithGame(g *chess.Game) MatchOption {
	return func(c *matchConfig) { c.game = g }
}

// WithOnFinish registers fn to receive the record once the game ends. It
// is called without the match lock held.
func WithOnFinish(fn func(Record)) MatchOption {
	return func(c *matchConfig) { c.onFinish = fn }
}

// WithTimeSource replaces time.Now for the clocks.
func WithTimeSource(now func() time.Time) MatchOption {
	return func(c *matchConfig) { c.now = now }
}

func NewMatch(id string, opts ...MatchOption) *Match {
	cfg := matchConfig{clock: DefaultClock, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.game == nil {
		cfg.game = chess.NewGame()
	}
	newClock := func() *Clock {
		c := NewClock(cfg.clock)
		c.now = cfg.now
		return c
	}
	return &Match{
		ID:          id,
		game:        cfg.game,
		white:       seat{clock: newClock()},
		black:       seat{clock: newClock()},
		connections: NewGameConnections(),
		onFinish:    cfg.onFinish,
		now:         cfg.now,
	}
}

func (m *Match) seat(c chess.Color) *seat {
	if c == chess.White {
		return &m.white
	}
	return &m.black
}

// colorOf returns the color playerID is seated as.
func (m *Match) colorOf(playerID string) (chess.Color, bool) {
	switch {
	case playerID == "":
		return "", false
	case m.white.id == playerID:
		return chess.White, true
	case m.black.id == playerID:
		return chess.Black, true
	}
	return "", false
}

// ColorOf returns the color playerID plays, if seated.
func (m *Match) ColorOf(playerID string) (chess.Color, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.colorOf(playerID)
}

// AddPlayer seats playerID in the first free seat, White first. Joining
// again returns the seat already held. The side to move's clock starts once
// both seats are taken.
func (m *Match) AddPlayer(playerID string) (chess.Color, error) {
	m.mu.Lock()
	if c, ok := m.colorOf(playerID); ok {
		m.mu.Unlock()
		return c, nil
	}

	var color chess.Color
	switch {
	case !m.white.taken():
		color = chess.White
	case !m.black.taken():
		color = chess.Black
	default:
		m.mu.Unlock()
		return "", ErrGameFull
	}
	m.seat(color).id = playerID
	log.Infof("match %s: player %s seated as %s", m.ID, playerID, color)

	if m.white.taken() && m.black.taken() {
		m.startedAt = m.now()
		if m.game.Status().IsOngoing() {
			m.seat(m.game.Turn()).clock.Start()
		}
	}
	var out outbox
	out.broadcast(ws.MustMessage(ws.MessageTypeGameState, m.stateLocked()))
	m.connections.hold()
	m.mu.Unlock()

	m.connections.flush(out)
	return color, nil
}

// MakeMove plays req for playerID. The mover receives moveAccepted or
// moveRejected, the opponent the move itself, and everyone the new state.
func (m *Match) MakeMove(playerID string, req MoveRequest) error {
	m.mu.Lock()
	var out outbox
	color, seated := m.colorOf(playerID)
	promotes := seated && m.promotes(color, req)
	changed, err := m.makeMove(playerID, req)
	switch moveReply(changed, err) {
	case ws.MessageTypeMoveAccepted:
		out.send(playerID, ws.MustMessage(ws.MessageTypeMoveAccepted, nil))
		relayed := ws.MovePayload(req)
		if !promotes {
			relayed.Promotion = ""
		}
		if opp := m.seat(color.Opposite()).id; opp != "" {
			out.send(opp, ws.MustMessage(ws.MessageTypeOpponentMove, relayed))
		}
	case ws.MessageTypeError:
		out.send(playerID, ws.MustMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()}))
	default:
		out.send(playerID, ws.MustMessage(ws.MessageTypeMoveRejected, ws.MoveRejectedPayload{Reason: err.Error()}))
	}
	rec, finished := m.afterChange(changed, &out)
	m.connections.hold()
	m.mu.Unlock()

	m.connections.flush(out)
	m.finish(rec, finished)
	return err
}

// moveReply picks the mover's answer. A failure after the move was played
// is an error, not a rejection; a flag fall rejects the move.
func moveReply(changed bool, err error) ws.MessageType {
	switch {
	case err == nil:
		return ws.MessageTypeMoveAccepted
	case changed && !errors.Is(err, ErrTimeExpired):
		return ws.MessageTypeError
	}
	return ws.MessageTypeMoveRejected
}

func (m *Match) makeMove(playerID string, req MoveRequest) (bool, error) {
	color, ok := m.colorOf(playerID)
	if !ok {
		return false, ErrNotInGame
	}
	if !m.game.Status().IsOngoing() {
		return false, chess.ErrGameAlreadyOver
	}
	if !m.white.taken() || !m.black.taken() {
		return false, ErrWaitingForOpponent
	}
	if color != m.game.Turn() {
		return false, ErrNotYourTurn
	}
	mover := m.seat(color)
	if mover.clock.Expired() {
		if err := m.game.Flag(color); err != nil {
			return false, err
		}
		return true, ErrTimeExpired
	}

	// Check the promotion choice before anything is committed so a bad
	// request cannot leave the engine waiting for a piece.
	promotes := m.promotes(color, req)
	if promotes {
		switch req.Promotion {
		case "":
			return false, ErrPromotionChoiceRequired
		case chess.Queen, chess.Rook, chess.Bishop, chess.Knight:
		default:
			return false, fmt.Errorf("%w: %q", chess.ErrInvalidPromotion, req.Promotion)
		}
	}

	if err := m.game.PlayMove(req.From, req.To); err != nil {
		return false, err
	}
	if _, pending := m.game.PendingPromotion(); pending {
		if err := m.game.ResolvePromotionFor(color, req.Promotion); err != nil {
			// Checked above; reaching this means the engine and the check disagree.
			log.Errorf("match %s: promotion for %s failed after commit: %v", m.ID, color, err)
			return true, err
		}
	}

	m.drawOffer = ""
	mover.clock.Stop()
	if _, err := m.game.Evaluate(); err != nil {
		log.Errorf("match %s: corrupted position after %v: %v", m.ID, req, err)
		return true, err
	}
	if m.game.Status().IsOngoing() {
		m.seat(color.Opposite()).clock.Start()
	}
	return true, nil
}

// promotes reports whether req moves a pawn of color onto the last rank.
func (m *Match) promotes(color chess.Color, req MoveRequest) bool {
	p, ok := m.game.PieceAt(req.From.Row, req.From.Col)
	if !ok || p.Type != chess.Pawn || p.Color != color {
		return false
	}
	last := 7
	if color == chess.Black {
		last = 0
	}
	return req.To.Row == last
}

// Resign ends the game in the opponent's favour.
func (m *Match) Resign(playerID string) error {
	return m.endBy(playerID, func(c chess.Color) error { return m.game.Resign(c) })
}

// OfferDraw records an offer from playerID and relays it to the opponent.
// The offer lapses when either side moves.
func (m *Match) OfferDraw(playerID string) error {
	m.mu.Lock()
	var out outbox
	color, ok := m.colorOf(playerID)
	var err error
	switch {
	case !ok:
		err = ErrNotInGame
	case !m.game.Status().IsOngoing():
		err = chess.ErrGameAlreadyOver
	default:
		m.drawOffer = color
		if opp := m.seat(color.Opposite()).id; opp != "" {
			out.send(opp, ws.MustMessage(ws.MessageTypeOfferDraw, nil))
		}
	}
	m.connections.hold()
	m.mu.Unlock()

	m.connections.flush(out)
	return err
}

// AcceptDraw accepts the opponent's pending offer.
func (m *Match) AcceptDraw(playerID string) error {
	return m.endBy(playerID, func(c chess.Color) error {
		if m.drawOffer != c.Opposite() {
			return ErrNoDrawOffer
		}
		return m.game.AgreeDraw()
	})
}

// DeclineDraw turns down the opponent's pending offer.
func (m *Match) DeclineDraw(playerID string) error {
	m.mu.Lock()
	var out outbox
	color, ok := m.colorOf(playerID)
	var err error
	switch {
	case !ok:
		err = ErrNotInGame
	case m.drawOffer != color.Opposite():
		err = ErrNoDrawOffer
	default:
		m.drawOffer = ""
		out.send(m.seat(color.Opposite()).id, ws.MustMessage(ws.MessageTypeDeclineDraw, nil))
	}
	m.connections.hold()
	m.mu.Unlock()

	m.connections.flush(out)
	return err
}

// endBy runs a game-ending action for the seated player and announces the
// result.
func (m *Match) endBy(playerID string, action func(chess.Color) error) error {
	m.mu.Lock()
	var out outbox
	color, ok := m.colorOf(playerID)
	var err error
	if !ok {
		err = ErrNotInGame
	} else {
		err = action(color)
	}
	if err == nil && m.game.Status().Reason == chess.ReasonAgreement {
		out.send(m.seat(color.Opposite()).id, ws.MustMessage(ws.MessageTypeAcceptDraw, nil))
	}
	rec, finished := m.afterChange(err == nil, &out)
	m.connections.hold()
	m.mu.Unlock()

	m.connections.flush(out)
	m.finish(rec, finished)
	return err
}

// CheckClocks flags the side to move if its time has run out. It reports
// whether the game ended.
func (m *Match) CheckClocks() bool {
	m.mu.Lock()
	turn := m.game.Turn()
	expired := m.white.taken() && m.black.taken() &&
		m.game.Status().IsOngoing() && m.seat(turn).clock.Expired()
	if !expired {
		m.mu.Unlock()
		return false
	}
	if err := m.game.Flag(turn); err != nil {
		m.mu.Unlock()
		return false
	}
	log.Infof("match %s: %s ran out of time", m.ID, turn)
	var out outbox
	rec, finished := m.afterChange(true, &out)
	m.connections.hold()
	m.mu.Unlock()

	m.connections.flush(out)
	m.finish(rec, finished)
	return true
}

// afterChange queues the new state and, the first time the game is seen
// finished, the gameOver message. It returns the record to archive.
func (m *Match) afterChange(changed bool, out *outbox) (Record, bool) {
	if !changed {
		return Record{}, false
	}
	out.broadcast(ws.MustMessage(ws.MessageTypeGameState, m.stateLocked()))

	status := m.game.Status()
	if status.IsOngoing() || m.announced {
		return Record{}, false
	}
	m.announced = true
	m.white.clock.Stop()
	m.black.clock.Stop()
	m.drawOffer = ""
	out.broadcast(ws.MustMessage(ws.MessageTypeGameOver, ws.GameOverPayload{Status: status}))
	log.Infof("match %s: %s", m.ID, status)

	history := m.game.History()
	moves := make([]string, len(history))
	for i, mv := range history {
		moves[i] = mv.String()
	}
	return Record{
		ID:        m.ID,
		White:     m.white.id,
		Black:     m.black.id,
		Status:    status,
		Moves:     moves,
		FinalFEN:  m.game.FEN(),
		StartedAt: m.startedAt,
		EndedAt:   m.now(),
	}, true
}

func (m *Match) finish(rec Record, finished bool) {
	if finished && m.onFinish != nil {
		m.onFinish(rec)
	}
}

// IsFinished reports whether the game has a result.
func (m *Match) IsFinished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.game.Status().IsOngoing()
}

// LegalMoves lists where the piece on square may go now.
func (m *Match) LegalMoves(square chess.Position) []chess.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.game.LegalMoves(square)
}

func (m *Match) GetState() GameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Match) stateLocked() GameState {
	s := GameState{
		ID:            m.ID,
		FEN:           m.game.FEN(),
		ToMove:        m.game.Turn(),
		Status:        m.game.Status(),
		Castling:      m.game.Castling(),
		HalfMoveClock: m.game.HalfMoveClock(),
		DrawOfferedBy: m.drawOffer,
		MoveHistory:   []string{},
	}
	grid := m.game.Grid()
	for r := range grid {
		for c := range grid[r] {
			if p := grid[r][c]; !p.IsZero() {
				s.Board[r][c] = &p
			}
		}
	}
	inCheck, err := m.game.InCheck()
	if err != nil {
		log.Errorf("match %s: %v", m.ID, err)
	}
	s.IsCheck = inCheck
	if pp, ok := m.game.PendingPromotion(); ok {
		s.PendingPromotion = &pp
	}
	if ep, ok := m.game.EnPassant(); ok {
		s.EnPassant = &ep
	}
	history := m.game.History()
	for _, mv := range history {
		s.MoveHistory = append(s.MoveHistory, mv.String())
	}
	if n := len(history); n > 0 {
		s.LastMove = &history[n-1]
	}
	s.Players.White = m.white.client(chess.White)
	s.Players.Black = m.black.client(chess.Black)
	return s
}

// RegisterConnection attaches conn for playerID and sends it the current
// state. Anyone may watch. A second connection for the same player is
// closed and ErrAlreadyConnected returned.
func (m *Match) RegisterConnection(playerID string, conn Conn) error {
	if playerID == "" {
		return ErrNotInGame
	}
	if !m.connections.add(playerID, conn) {
		log.Debugf("match %s: duplicate connection for player %s rejected", m.ID, playerID)
		return ErrAlreadyConnected
	}
	m.mu.Lock()
	var out outbox
	out.send(playerID, ws.MustMessage(ws.MessageTypeGameState, m.stateLocked()))
	m.connections.hold()
	m.mu.Unlock()

	m.connections.flush(out)
	return nil
}

// Send writes msg to playerID's connection. It never interleaves with a
// batch of the match's own messages.
func (m *Match) Send(playerID string, msg ws.Message) {
	var out outbox
	out.send(playerID, msg)
	m.connections.deliver(out)
}

func (m *Match) UnregisterConnection(playerID string) {
	m.connections.remove(playerID)
}

// Connections returns how many connections are attached.
func (m *Match) Connections() int {
	return m.connections.count()
}
