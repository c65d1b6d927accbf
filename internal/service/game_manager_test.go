package service

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

type memArchive struct {
	mu      sync.Mutex
	records map[string]model.Record
}

func newMemArchive() *memArchive {
	return &memArchive{records: make(map[string]model.Record)}
}

func (a *memArchive) Save(rec model.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records[rec.ID] = rec
	return nil
}

func (a *memArchive) List() ([]model.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []model.Record
	for _, rec := range a.records {
		out = append(out, rec)
	}
	return out, nil
}

func (a *memArchive) Load(id string) (model.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec, ok := a.records[id]
	if !ok {
		return model.Record{}, errors.New("not archived")
	}
	return rec, nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// newTestManager returns a manager whose background loop never fires on
// its own; tests drive matchmaking and sweeps directly.
func newTestManager(t *testing.T, opts Options) *GameManager {
	t.Helper()
	opts.MatchmakingInterval = time.Hour
	gm := NewGameManager(opts)
	t.Cleanup(gm.Close)
	return gm
}

func TestCreateAndJoin(t *testing.T) {
	gm := newTestManager(t, Options{})
	gs := NewGameService(gm)

	id, err := gs.CreateGame()
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if err := gm.CreateGame(id); !errors.Is(err, ErrGameExists) {
		t.Errorf("duplicate CreateGame err = %v", err)
	}
	if c, err := gs.JoinGame(id, "ann"); err != nil || c != chess.White {
		t.Errorf("JoinGame(ann) = %s, %v", c, err)
	}
	if _, err := gs.JoinGame("missing", "ann"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("JoinGame(missing) err = %v", err)
	}
	if _, err := gs.GetGameState("missing"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("GetGameState(missing) err = %v", err)
	}

	moves, err := gs.LegalMoves(id, "e2")
	if err != nil {
		t.Fatalf("LegalMoves: %v", err)
	}
	want := []chess.Position{chess.Sq(2, 4), chess.Sq(3, 4)}
	if diff := cmp.Diff(want, moves); diff != "" {
		t.Errorf("LegalMoves mismatch (-want +got):\n%s", diff)
	}
	if _, err := gs.LegalMoves(id, "z9"); !errors.Is(err, chess.ErrInvalidSquare) {
		t.Errorf("LegalMoves(z9) err = %v", err)
	}
}

func TestMatchmaking(t *testing.T) {
	gm := newTestManager(t, Options{})
	gs := NewGameService(gm)

	annCh := make(chan ws.Message, 1)
	if err := gs.RegisterMatchmakingChannel("ann", annCh); err != nil {
		t.Fatal(err)
	}
	if err := gs.JoinMatchmaking("ann"); err != nil {
		t.Fatal(err)
	}
	if err := gs.JoinMatchmaking("ann"); !errors.Is(err, model.ErrAlreadyQueued) {
		t.Errorf("second JoinMatchmaking err = %v", err)
	}
	gm.processMatchmaking()
	select {
	case msg := <-annCh:
		t.Fatalf("lone player matched: %v", msg)
	default:
	}

	gs.JoinMatchmaking("bob")
	gm.processMatchmaking()

	msg, ok := <-annCh
	if !ok || msg.Type != ws.MessageTypeMatchFound {
		t.Fatalf("ann got %v, %v", msg, ok)
	}
	var annEvent model.MatchFoundEvent
	if err := json.Unmarshal(msg.Payload, &annEvent); err != nil {
		t.Fatal(err)
	}
	if annEvent.Color != chess.White {
		t.Errorf("ann plays %s, want white", annEvent.Color)
	}
	if _, ok := <-annCh; ok {
		t.Error("channel left open after the match was sent")
	}

	// bob connects after the pairing and still gets the event.
	bobCh := make(chan ws.Message, 1)
	if err := gs.RegisterMatchmakingChannel("bob", bobCh); err != nil {
		t.Fatal(err)
	}
	var bobEvent model.MatchFoundEvent
	if err := json.Unmarshal((<-bobCh).Payload, &bobEvent); err != nil {
		t.Fatal(err)
	}
	if bobEvent.GameID != annEvent.GameID || bobEvent.Color != chess.Black {
		t.Errorf("bob event = %+v, ann event = %+v", bobEvent, annEvent)
	}

	state, err := gs.GetGameState(annEvent.GameID)
	if err != nil {
		t.Fatalf("GetGameState: %v", err)
	}
	if state.Players.White.ID != "ann" || state.Players.Black.ID != "bob" {
		t.Errorf("players = %+v", state.Players)
	}
}

func TestLeavingMatchmaking(t *testing.T) {
	gm := newTestManager(t, Options{})
	ch := make(chan ws.Message, 1)
	gm.RegisterMatchmakingChannel("ann", ch)
	gm.JoinMatchmaking("ann")

	gm.UnregisterMatchmakingChannel("ann", ch)
	gm.JoinMatchmaking("bob")
	gm.processMatchmaking()

	if gm.queue.Size() != 1 {
		t.Errorf("queue size = %d, want 1", gm.queue.Size())
	}
}

// ann's socket closes just as the game is found; the next socket still
// learns about it.
func TestMatchFoundSurvivesClosingSocket(t *testing.T) {
	gm := newTestManager(t, Options{})
	first := make(chan ws.Message, 1)
	gm.RegisterMatchmakingChannel("ann", first)
	gm.JoinMatchmaking("ann")
	gm.JoinMatchmaking("bob")
	gm.processMatchmaking()

	gm.UnregisterMatchmakingChannel("ann", first)

	second := make(chan ws.Message, 1)
	if err := gm.RegisterMatchmakingChannel("ann", second); err != nil {
		t.Fatal(err)
	}
	msg, ok := <-second
	if !ok || msg.Type != ws.MessageTypeMatchFound {
		t.Fatalf("second socket got %v, %v", msg, ok)
	}
	var event model.MatchFoundEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		t.Fatal(err)
	}
	if _, err := gm.GetGame(event.GameID); err != nil || event.Color != chess.White {
		t.Errorf("event = %+v, GetGame err = %v", event, err)
	}
}

func TestReplacedMatchmakingChannelIsClosed(t *testing.T) {
	gm := newTestManager(t, Options{})
	first := make(chan ws.Message, 1)
	second := make(chan ws.Message, 1)
	gm.RegisterMatchmakingChannel("ann", first)
	gm.RegisterMatchmakingChannel("ann", second)

	if _, ok := <-first; ok {
		t.Error("replaced channel still open")
	}
	if err := gm.RegisterMatchmakingChannel("ann", second); !errors.Is(err, ErrAlreadyListening) {
		t.Errorf("re-registering err = %v", err)
	}
}

func TestFinishedGamesAreArchived(t *testing.T) {
	archive := newMemArchive()
	gm := newTestManager(t, Options{Archive: archive})
	gs := NewGameService(gm)

	id, _ := gs.CreateGame()
	gs.JoinGame(id, "ann")
	gs.JoinGame(id, "bob")
	if err := gs.HandleMove(id, "ann", ws.MovePayload{From: chess.Sq(1, 4), To: chess.Sq(3, 4)}); err != nil {
		t.Fatal(err)
	}
	if err := gs.HandleAction(id, "bob", ws.MessageTypeResign); err != nil {
		t.Fatal(err)
	}

	rec, err := gs.ArchivedGame(id)
	if err != nil {
		t.Fatalf("ArchivedGame: %v", err)
	}
	if rec.Status != chess.Win(chess.White, chess.ReasonResignation) {
		t.Errorf("archived status = %v", rec.Status)
	}
	if diff := cmp.Diff([]string{"e2e4"}, rec.Moves); diff != "" {
		t.Errorf("moves mismatch (-want +got):\n%s", diff)
	}

	recs, err := gs.ArchivedGames()
	if err != nil || len(recs) != 1 || recs[0].ID != id {
		t.Errorf("ArchivedGames() = %v, %v", recs, err)
	}

	gm.sweepClocks()
	if _, err := gm.GetGame(id); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("finished game not evicted: %v", err)
	}
}

func TestSweepFlagsExpiredClocks(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	archive := newMemArchive()
	gm := newTestManager(t, Options{Clock: time.Minute, Now: c.now, Archive: archive})

	gm.CreateGame("g1")
	gm.AddPlayerToGame("g1", "ann")
	gm.AddPlayerToGame("g1", "bob")
	watcher := &nopConn{}
	gm.RegisterConnection("g1", "ann", watcher)

	c.advance(59 * time.Second)
	gm.sweepClocks()
	if state, _ := gm.GetGameState("g1"); !state.Status.IsOngoing() {
		t.Fatalf("flag fell early: %v", state.Status)
	}

	c.advance(2 * time.Second)
	gm.sweepClocks()
	state, err := gm.GetGameState("g1")
	if err != nil {
		t.Fatalf("watched game evicted: %v", err)
	}
	if state.Status != chess.Win(chess.Black, chess.ReasonTimeout) {
		t.Errorf("status = %v", state.Status)
	}
	if _, err := archive.Load("g1"); err != nil {
		t.Errorf("timeout not archived: %v", err)
	}
}

func TestArchiveDisabled(t *testing.T) {
	gm := newTestManager(t, Options{})
	if _, err := gm.ArchivedGame("x"); !errors.Is(err, ErrArchiveDisabled) {
		t.Errorf("err = %v, want %v", err, ErrArchiveDisabled)
	}
	if _, err := gm.ArchivedGames(); !errors.Is(err, ErrArchiveDisabled) {
		t.Errorf("list err = %v, want %v", err, ErrArchiveDisabled)
	}
}

func TestUnknownAction(t *testing.T) {
	gm := newTestManager(t, Options{})
	gm.CreateGame("g1")
	gm.AddPlayerToGame("g1", "ann")
	if err := gm.Act("g1", "ann", ws.MessageTypeSendMove); err == nil {
		t.Error("Act accepted sendMove")
	}
}

type nopConn struct{}

func (nopConn) WriteJSON(interface{}) error    { return nil }
func (nopConn) WriteMessage(int, []byte) error { return nil }
func (nopConn) Close() error                   { return nil }
