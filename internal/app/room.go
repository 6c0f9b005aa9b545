package app

import (
	"math/rand"
	"sync"
	"time"

	"doudizhu/internal/bot"
	"doudizhu/internal/domain"
)

const (
	spectatingMessage       = "the game has started, you are watching until the next one"
	notEnoughPlayersMessage = "not enough players, game over"
)

// RoomOptions configures a Room.
type RoomOptions struct {
	Fixed              bool // part of the pre-created pool, kept when empty
	Jokers             bool
	TurnTimeout        time.Duration // zero disables the turn deadline
	EndGameOnDeparture bool
	Brain              bot.Brain // acts for a player whose turn timed out
	Rand               *rand.Rand
	Now                func() time.Time
}

// Room is the session state machine of one table. All methods are safe for
// concurrent use; each transition runs entirely under the room lock and
// returns the events to publish once it is released.
type Room struct {
	mu       sync.Mutex
	opts     RoomOptions
	state    *domain.RoomState
	deadline time.Time
}

// NewRoom creates an empty waiting room.
func NewRoom(id string, opts RoomOptions) *Room {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Brain == nil {
		opts.Brain = &bot.StandardBot{}
	}
	return &Room{opts: opts, state: domain.NewRoomState(id)}
}

func (r *Room) ID() string { return r.state.ID }

func (r *Room) Fixed() bool { return r.opts.Fixed }

// Join seats a player in the first free position.
func (r *Room) Join(pid domain.PlayerID) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.state
	if _, ok := s.Players[pid]; ok {
		return nil, ErrAlreadyInRoom
	}
	if len(s.Players) >= domain.PlayersPerRoom {
		return nil, ErrRoomFull
	}

	var events []Event
	if s.Phase == domain.PhaseStarted {
		events = append(events, r.unicast(pid, EventSpectating, SpectatingPayload{Message: spectatingMessage}))
	}

	pos := domain.FreePosition(s)
	s.Players[pid] = &domain.Player{ID: pid, Position: pos}
	if pos != domain.PositionUnset {
		events = append(events, r.unicast(pid, EventSeatAssigned, pos))
	}

	events = append(events,
		r.broadcast(EventPlayerListUpdated, r.playerList()),
		r.unicast(pid, EventJoinedRoom, JoinedRoomPayload{RoomID: s.ID}),
	)
	return events, nil
}

// Ready marks a player ready and starts the game once the table is full and
// everyone is ready.
func (r *Room) Ready(pid domain.PlayerID) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.state
	pl, ok := s.Players[pid]
	if !ok {
		return nil, ErrNotInPlayerList
	}
	switch {
	case s.Phase == domain.PhaseStarted:
		return nil, ErrGameInProgress
	case s.Phase == domain.PhaseGameOver:
		return nil, ErrGameFinished
	case pl.Ready:
		return nil, ErrAlreadyReady
	}

	pl.Ready = true
	s.ReadyCount++
	s.Phase = domain.PhaseReady

	events := []Event{r.broadcast(EventPlayerReady, PlayerReadyPayload{PlayerID: pid, Ready: true})}
	if len(s.Players) == domain.PlayersPerRoom && s.ReadyCount == domain.PlayersPerRoom {
		events = append(events, r.start()...)
	}
	return events, nil
}

// PlayCards plays cards from the current player's hand.
func (r *Room) PlayCards(pid domain.PlayerID, cards []domain.Card) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.play(pid, cards)
}

// PassTurn passes the current player's turn.
func (r *Room) PassTurn(pid domain.PlayerID) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pass(pid)
}

// Reset returns the room to waiting. Any seated player may ask for it.
func (r *Room) Reset(pid domain.PlayerID) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.state.Players[pid]; !ok {
		return nil, ErrNotInPlayerList
	}
	return r.reset(), nil
}

// Leave removes a player, repairing the turn order if a game is running.
// empty reports whether the room has no players left.
func (r *Room) Leave(pid domain.PlayerID) (events []Event, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.state
	pl, ok := s.Players[pid]
	if !ok {
		return nil, len(s.Players) == 0
	}
	if pl.Ready && s.ReadyCount > 0 {
		s.ReadyCount--
	}
	delete(s.Players, pid)

	if pl.Position != domain.PositionUnset {
		events = append(events, r.broadcast(EventPlayerLeft, PlayerLeftPayload{ID: pid, Position: pl.Position}))
	}
	events = append(events, r.broadcast(EventPlayerListUpdated, r.playerList()))

	switch s.Phase {
	case domain.PhaseReady:
		if s.ReadyCount == 0 {
			s.Phase = domain.PhaseWaiting
		}
	case domain.PhaseStarted:
		events = append(events, r.depart(pid)...)
	}

	if len(s.Players) == 0 {
		domain.ResetGame(s)
		r.deadline = time.Time{}
	}
	return events, len(s.Players) == 0
}

// Tick acts for the current player once their turn deadline has passed.
func (r *Room) Tick(now time.Time) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.state
	if s.Phase != domain.PhaseStarted || r.deadline.IsZero() || now.Before(r.deadline) {
		return nil
	}
	pid := s.CurrentPlayerID
	pl, ok := s.Players[pid]
	if !ok || len(pl.Hand) == 0 {
		r.armTurn()
		return nil
	}

	move := r.opts.Brain.CalculateMove(pl.Hand, s.Table)
	if move.Pass && s.Table != nil {
		if events, err := r.pass(pid); err == nil {
			return events
		}
	}
	if !move.Pass {
		if events, err := r.play(pid, move.Cards); err == nil {
			return events
		}
	}
	if s.Table != nil {
		events, _ := r.pass(pid)
		return events
	}
	events, _ := r.play(pid, pl.Hand[:1])
	return events
}

// Deadline returns the current turn deadline, zero when none is running.
func (r *Room) Deadline() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deadline
}

// PlayerIDs returns the seated players in seat order.
func (r *Room) PlayerIDs() []domain.PlayerID {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]domain.PlayerID, 0, len(r.state.Players))
	for _, pl := range domain.SeatedPlayers(r.state) {
		ids = append(ids, pl.ID)
	}
	return ids
}

func (r *Room) Occupancy() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.Players)
}

func (r *Room) Summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomSummary{ID: r.state.ID, PlayerCount: len(r.state.Players)}
}

// RoomSnapshot is a read-only copy of a room's public state.
type RoomSnapshot struct {
	ID              string
	Phase           domain.Phase
	Fixed           bool
	Players         []PlayerListEntry
	HandSizes       map[domain.PlayerID]int
	PlayerOrder     []domain.PlayerID
	CurrentPlayerID domain.PlayerID
	Table           []domain.Card
	ReadyCount      int
}

func (r *Room) Snapshot() RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.state
	snap := RoomSnapshot{
		ID:              s.ID,
		Phase:           s.Phase,
		Fixed:           r.opts.Fixed,
		Players:         r.playerList(),
		HandSizes:       make(map[domain.PlayerID]int, len(s.Players)),
		PlayerOrder:     append([]domain.PlayerID(nil), s.PlayerOrder...),
		CurrentPlayerID: s.CurrentPlayerID,
		ReadyCount:      s.ReadyCount,
	}
	for id, pl := range s.Players {
		snap.HandSizes[id] = len(pl.Hand)
	}
	if s.Table != nil {
		snap.Table = append([]domain.Card(nil), s.Table.Cards...)
	}
	return snap
}

func (r *Room) start() []Event {
	s := r.state
	seated := domain.SeatedPlayers(s)
	deck := domain.ShuffleDeck(domain.NewDeck(r.opts.Jokers), r.opts.Rand)
	hands, bottom := domain.Deal(deck, len(seated))

	ids := make([]domain.PlayerID, len(seated))
	for i, pl := range seated {
		pl.Hand = hands[i]
		ids[i] = pl.ID
	}
	leader := ids[domain.LeaderIndex(hands)]

	s.Phase = domain.PhaseStarted
	s.PlayerOrder = domain.RotateOrder(ids, leader)
	s.CurrentPlayerID = leader
	s.Table = nil
	s.LastPlayerID = ""
	s.ConsecutivePasses = 0
	s.Bottom = bottom

	events := make([]Event, 0, len(seated)+1)
	started := GameStartedPayload{
		StartPlayerID: leader,
		PlayerOrder:   append([]domain.PlayerID(nil), s.PlayerOrder...),
	}
	for _, pl := range seated {
		events = append(events, r.unicast(pl.ID, EventYourHand, append([]domain.Card(nil), pl.Hand...)))
		started.Players = append(started.Players, StartedPlayer{ID: pl.ID, Position: pl.Position, HandSize: len(pl.Hand)})
	}
	events = append(events, r.broadcast(EventGameStarted, started))

	r.armTurn()
	return events
}

func (r *Room) play(pid domain.PlayerID, cards []domain.Card) ([]Event, error) {
	s := r.state
	pl, ok := s.Players[pid]
	if !ok {
		return nil, ErrNotInPlayerList
	}
	if s.Phase != domain.PhaseStarted {
		return nil, ErrGameNotStarted
	}
	if s.CurrentPlayerID != pid {
		return nil, ErrNotYourTurn
	}
	if len(cards) == 0 {
		return nil, ErrEmptyPlaySelection
	}
	if !domain.HasCards(pl.Hand, cards) {
		return nil, ErrCardsNotInHand
	}
	combo, err := domain.Classify(cards)
	if err != nil {
		return nil, ErrInvalidCombination
	}
	if !domain.Beats(combo, s.Table) {
		return nil, ErrPlayTooWeak
	}

	pl.Hand = domain.RemoveCards(pl.Hand, combo.Cards)
	s.RegisterPlay(pid, combo)

	events := []Event{r.broadcast(EventCardsPlayed, CardsPlayedPayload{
		PlayerID: pid,
		Play:     append([]domain.Card(nil), combo.Cards...),
		HandSize: len(pl.Hand),
	})}

	if len(pl.Hand) == 0 {
		s.Phase = domain.PhaseGameOver
		s.CurrentPlayerID = ""
		r.deadline = time.Time{}
		winner := pid
		return append(events, r.broadcast(EventGameOver, GameOverPayload{WinnerID: &winner})), nil
	}

	r.armTurn()
	return append(events, r.broadcast(EventNextTurn, TurnPayload{PlayerID: s.CurrentPlayerID})), nil
}

func (r *Room) pass(pid domain.PlayerID) ([]Event, error) {
	s := r.state
	if _, ok := s.Players[pid]; !ok {
		return nil, ErrNotInPlayerList
	}
	if s.Phase != domain.PhaseStarted {
		return nil, ErrGameNotStarted
	}
	if s.CurrentPlayerID != pid {
		return nil, ErrNotYourTurn
	}
	if s.Table == nil {
		return nil, ErrCannotPassOnEmptyTable
	}

	events := []Event{r.broadcast(EventPlayerPassed, TurnPayload{PlayerID: pid})}
	if s.RegisterPass() {
		events = append(events, r.broadcast(EventRoundEnded, nil))
	}
	r.armTurn()
	return append(events, r.broadcast(EventNextTurn, TurnPayload{PlayerID: s.CurrentPlayerID})), nil
}

// depart repairs a running game after pid left.
func (r *Room) depart(pid domain.PlayerID) []Event {
	s := r.state
	if len(s.Players) == 0 {
		return nil
	}

	moved, trickOver := s.RemoveFromOrder(pid)
	var events []Event

	if r.opts.EndGameOnDeparture {
		if moved {
			events = append(events, r.broadcast(EventNextTurn, TurnPayload{PlayerID: s.CurrentPlayerID}))
		}
		events = append(events, r.broadcast(EventGameOver, GameOverPayload{Message: notEnoughPlayersMessage}))
		return append(events, r.reset()...)
	}

	if len(s.PlayerOrder) < 2 {
		events = append(events, r.broadcast(EventGameOver, GameOverPayload{Message: notEnoughPlayersMessage}))
		return append(events, r.reset()...)
	}
	if trickOver {
		events = append(events, r.broadcast(EventRoundEnded, nil))
	}
	if moved || trickOver {
		r.armTurn()
		events = append(events, r.broadcast(EventNextTurn, TurnPayload{PlayerID: s.CurrentPlayerID}))
	}
	return events
}

func (r *Room) reset() []Event {
	domain.ResetGame(r.state)
	r.deadline = time.Time{}
	return []Event{
		r.broadcast(EventGameReset, nil),
		r.broadcast(EventPlayerListUpdated, r.playerList()),
	}
}

func (r *Room) armTurn() {
	if r.opts.TurnTimeout <= 0 || r.state.Phase != domain.PhaseStarted {
		r.deadline = time.Time{}
		return
	}
	r.deadline = r.opts.Now().Add(r.opts.TurnTimeout)
}

func (r *Room) playerList() []PlayerListEntry {
	seated := domain.SeatedPlayers(r.state)
	list := make([]PlayerListEntry, 0, len(seated))
	for _, pl := range seated {
		list = append(list, PlayerListEntry{ID: pl.ID, Position: pl.Position, Ready: pl.Ready})
	}
	return list
}

func (r *Room) broadcast(kind EventKind, payload any) Event {
	return Event{Kind: kind, RoomID: r.state.ID, Payload: payload}
}

func (r *Room) unicast(pid domain.PlayerID, kind EventKind, payload any) Event {
	return Event{Kind: kind, RoomID: r.state.ID, Payload: payload, Recipients: []domain.PlayerID{pid}}
}
