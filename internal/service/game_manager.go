package service

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameExists       = errors.New("game already exists")
	ErrArchiveDisabled  = errors.New("archive disabled")
	ErrAlreadyListening = errors.New("matchmaking channel already registered")
)

// Archive stores finished games. *storage.Archive satisfies it.
type Archive interface {
	Save(rec model.Record) error
	Load(id string) (model.Record, error)
	List() ([]model.Record, error)
}

// Options configures a GameManager. Zero values fall back to defaults.
type Options struct {
	Clock               time.Duration
	MatchmakingInterval time.Duration
	Archive             Archive
	Now                 func() time.Time
}

type GameManager struct {
	games            map[string]*model.Match
	queue            *model.Queue
	matchingChannels map[string]chan ws.Message
	// matchFound messages waiting for their player's matchmaking socket
	unsent map[string]ws.Message
	mu     sync.RWMutex

	archive  Archive
	clock    time.Duration
	interval time.Duration
	now      func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewGameManager(opts Options) *GameManager {
	if opts.Clock <= 0 {
		opts.Clock = model.DefaultClock
	}
	if opts.MatchmakingInterval <= 0 {
		opts.MatchmakingInterval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	gm := &GameManager{
		games:            make(map[string]*model.Match),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan ws.Message),
		unsent:           make(map[string]ws.Message),
		archive:          opts.Archive,
		clock:            opts.Clock,
		interval:         opts.MatchmakingInterval,
		now:              opts.Now,
		stop:             make(chan struct{}),
		done:             make(chan struct{}),
	}

	// Start matchmaking processor
	go gm.run()

	return gm
}

// Close stops the background loop and waits for it to exit.
func (gm *GameManager) Close() {
	gm.closeOnce.Do(func() { close(gm.stop) })
	<-gm.done
}

func (gm *GameManager) run() {
	defer close(gm.done)
	ticker := time.NewTicker(gm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.stop:
			return
		case <-ticker.C:
			gm.processMatchmaking()
			gm.sweepClocks()
		}
	}
}

func (gm *GameManager) newMatch(id string) *model.Match {
	return model.NewMatch(id,
		model.WithClock(gm.clock),
		model.WithTimeSource(gm.now),
		model.WithOnFinish(gm.archiveRecord),
	)
}

// processMatchmaking pairs queued players two at a time and tells each of
// them their game.
func (gm *GameManager) processMatchmaking() {
	for {
		player1, player2, ok := gm.queue.GetNextPair()
		if !ok {
			return
		}

		gameID := uuid.New().String()
		match := gm.newMatch(gameID)
		p1Color, err := match.AddPlayer(player1.ID)
		if err != nil {
			log.Errorf("matchmaking: seating %s: %v", player1.ID, err)
			continue
		}
		p2Color, err := match.AddPlayer(player2.ID)
		if err != nil {
			log.Errorf("matchmaking: seating %s: %v", player2.ID, err)
			continue
		}

		gm.mu.Lock()
		gm.games[gameID] = match
		gm.notifyLocked(player1.ID, ws.MustMessage(ws.MessageTypeMatchFound, model.MatchFoundEvent{GameID: gameID, Color: p1Color}))
		gm.notifyLocked(player2.ID, ws.MustMessage(ws.MessageTypeMatchFound, model.MatchFoundEvent{GameID: gameID, Color: p2Color}))
		gm.mu.Unlock()
		log.Infof("matchmaking: %s (%s) vs %s (%s) in game %s", player1.ID, p1Color, player2.ID, p2Color, gameID)
	}
}

// notifyLocked sends msg on the player's matchmaking channel and closes it.
// Without a channel the message waits for the player to connect.
func (gm *GameManager) notifyLocked(playerID string, msg ws.Message) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		gm.unsent[playerID] = msg
		return
	}
	select {
	case ch <- msg:
		delete(gm.matchingChannels, playerID)
		close(ch)
	default:
		log.Warnf("matchmaking: channel of player %s is full, holding event", playerID)
		gm.unsent[playerID] = msg
	}
}

// sweepClocks flags sides whose time ran out and evicts finished games
// that are archived and no longer watched.
func (gm *GameManager) sweepClocks() {
	gm.mu.RLock()
	matches := make([]*model.Match, 0, len(gm.games))
	for _, m := range gm.games {
		matches = append(matches, m)
	}
	gm.mu.RUnlock()

	var evict []string
	for _, m := range matches {
		m.CheckClocks()
		if gm.archive != nil && m.IsFinished() && m.Connections() == 0 {
			evict = append(evict, m.ID)
		}
	}
	if len(evict) == 0 {
		return
	}
	gm.mu.Lock()
	for _, id := range evict {
		delete(gm.games, id)
	}
	gm.mu.Unlock()
	log.Debugf("evicted %d finished games", len(evict))
}

func (gm *GameManager) archiveRecord(rec model.Record) {
	if gm.archive == nil {
		return
	}
	if err := gm.archive.Save(rec); err != nil {
		log.Errorf("archiving game %s: %v", rec.ID, err)
		return
	}
	log.Infof("archived game %s: %s", rec.ID, rec.Status)
}

// RegisterMatchmakingChannel sets the channel ch that receives the player's
// matchFound message. ch is closed after the message is sent. A previously
// registered channel is closed and replaced.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan ws.Message) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		if existingCh == ch {
			return ErrAlreadyListening
		}
		// Remove from map first to prevent any new writes
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}
	gm.matchingChannels[playerID] = ch

	if msg, ok := gm.unsent[playerID]; ok {
		delete(gm.unsent, playerID)
		gm.notifyLocked(playerID, msg)
	}
	return nil
}

// UnregisterMatchmakingChannel forgets the player's channel without closing
// it and takes the player out of the queue. A matchFound already sitting in
// ch is held for the player's next socket.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan ws.Message) {
	gm.mu.Lock()
	if gm.matchingChannels[playerID] == ch {
		delete(gm.matchingChannels, playerID)
	}
	select {
	case msg, ok := <-ch:
		if ok {
			gm.unsent[playerID] = msg
		}
	default:
	}
	gm.mu.Unlock()

	if gm.queue.Remove(playerID) {
		log.Debugf("matchmaking: player %s left the queue", playerID)
	}
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}

	gm.games[gameID] = gm.newMatch(gameID)
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Match, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	match, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}

	return match, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (chess.Color, error) {
	match, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return match.AddPlayer(playerID)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		return err
	}
	log.Debugf("matchmaking: player %s queued (%d waiting)", playerID, gm.queue.Size())
	return nil
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	match, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return match.GetState(), nil
}

func (gm *GameManager) LegalMoves(gameID string, square chess.Position) ([]chess.Position, error) {
	match, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return match.LegalMoves(square), nil
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.MoveRequest) error {
	match, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return match.MakeMove(playerID, move)
}

// Act runs a non-move action (resign or a draw message) for playerID.
func (gm *GameManager) Act(gameID string, playerID string, action ws.MessageType) error {
	match, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	switch action {
	case ws.MessageTypeResign:
		return match.Resign(playerID)
	case ws.MessageTypeOfferDraw:
		return match.OfferDraw(playerID)
	case ws.MessageTypeAcceptDraw:
		return match.AcceptDraw(playerID)
	case ws.MessageTypeDeclineDraw:
		return match.DeclineDraw(playerID)
	}
	return errors.New("unknown action " + string(action))
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	match, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return match.RegisterConnection(playerID, conn)
}

// Send writes msg to the player's game connection.
func (gm *GameManager) Send(gameID string, playerID string, msg ws.Message) error {
	match, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	match.Send(playerID, msg)
	return nil
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string) {
	match, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	match.UnregisterConnection(playerID)
}

// ArchivedGame returns the record of a finished game.
func (gm *GameManager) ArchivedGame(gameID string) (model.Record, error) {
	if gm.archive == nil {
		return model.Record{}, ErrArchiveDisabled
	}
	return gm.archive.Load(gameID)
}

// ArchivedGames returns every finished game in the archive, oldest first.
func (gm *GameManager) ArchivedGames() ([]model.Record, error) {
	if gm.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return gm.archive.List()
}
