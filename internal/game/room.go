package game

import (
	"slices"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/scoring"
)

// RollsPerTurn is the number of rolls a player gets each turn.
const RollsPerTurn = 3

// Phase is the stored lifecycle state of a room. PhaseComplete is never
// stored; Room.Phase derives it from the score sheets.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseInProgress
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseInProgress:
		return "in_progress"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Player is one seat in a room, identified by its transport session.
type Player struct {
	SessionID string
	Name      string
	Sheet     scoring.Sheet
}

func (p *Player) view() PlayerView {
	return PlayerView{
		ID:       p.SessionID,
		Name:     p.Name,
		Scores:   p.Sheet.ByID(),
		UpperSum: p.Sheet.UpperSum(),
		Bonus:    p.Sheet.Bonus(),
		Total:    p.Sheet.Total(),
	}
}

// Room is one game session. Every method expects r.mu to be held by the
// caller (the Registry).
type Room struct {
	mu sync.Mutex

	code    string
	phase   Phase
	players []*Player
	current int

	dice      scoring.Dice
	held      Held
	rollsLeft int

	finished bool
	// closed is set once the roster empties; the Registry drops the room
	// and racing callers retry against a fresh one.
	closed bool

	policy Policy
	sender Sender
	log    zerolog.Logger
}

func newRoom(code string, policy Policy, sender Sender, log zerolog.Logger) *Room {
	return &Room{
		code:      code,
		phase:     PhaseLobby,
		players:   make([]*Player, 0, 4),
		rollsLeft: RollsPerTurn,
		policy:    policy,
		sender:    sender,
		log:       log.With().Str("room_code", code).Logger(),
	}
}

// Phase returns the lifecycle state, deriving PhaseComplete when every
// player has filled the whole sheet.
func (r *Room) Phase() Phase {
	if r.phase == PhaseInProgress && r.allComplete() {
		return PhaseComplete
	}
	return r.phase
}

func (r *Room) allComplete() bool {
	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.Sheet.Complete() {
			return false
		}
	}
	return true
}

func (r *Room) indexOf(sessionID string) int {
	return slices.IndexFunc(r.players, func(p *Player) bool { return p.SessionID == sessionID })
}

func (r *Room) resetTurn() {
	r.dice = scoring.Dice{}
	r.held = Held{}
	r.rollsLeft = RollsPerTurn
}

/* =========================
   Operations
   ========================= */

func (r *Room) join(name, sessionID string) error {
	if r.phase != PhaseLobby {
		return ErrGameStarted
	}
	if r.indexOf(sessionID) < 0 {
		r.players = append(r.players, &Player{SessionID: sessionID, Name: name, Sheet: scoring.Sheet{}})
		r.log.Info().Str("session_id", sessionID).Str("player_name", name).Int("players", len(r.players)).Msg("player joined")
	}
	r.broadcastRoster()
	return nil
}

func (r *Room) start(sessionID string) error {
	if r.phase != PhaseLobby {
		return ErrGameStarted
	}
	if len(r.players) == 0 {
		return ErrEmptyRoster
	}

	r.phase = PhaseInProgress
	r.current = 0
	r.finished = false
	r.resetTurn()
	for _, p := range r.players {
		p.Sheet = scoring.Sheet{}
	}

	r.log.Info().Str("session_id", sessionID).Int("players", len(r.players)).Msg("game started")
	r.broadcastSnapshot(EventGameStarted)
	return nil
}

// checkTurn rejects actions that are not allowed in the current phase or,
// under EnforceTurn, from a session other than the current player.
func (r *Room) checkTurn(sessionID string) error {
	switch r.Phase() {
	case PhaseLobby:
		return ErrNotStarted
	case PhaseComplete:
		return ErrGameComplete
	}
	if r.policy.EnforceTurn && r.players[r.current].SessionID != sessionID {
		return ErrNotYourTurn
	}
	return nil
}

func (r *Room) roll(sessionID string, dice scoring.Dice, rollsLeft int) error {
	if err := r.checkTurn(sessionID); err != nil {
		return err
	}
	r.dice = dice
	r.rollsLeft = rollsLeft

	r.log.Debug().Str("session_id", sessionID).Ints("dice", dice[:]).Int("rolls_left", rollsLeft).Msg("dice rolled")
	r.broadcastSnapshot(EventStateUpdated)
	return nil
}

func (r *Room) toggleHold(sessionID string, held Held) error {
	if err := r.checkTurn(sessionID); err != nil {
		return err
	}
	r.held = held

	ev := Event{Kind: EventStateUpdated, Payload: StateUpdate{Held: &held}}
	switch r.policy.HoldBroadcast {
	case HoldBroadcastAll:
		r.emit(ev, "")
	case HoldBroadcastNone:
	default:
		r.emit(ev, sessionID)
	}
	return nil
}

func (r *Room) commit(sessionID string, c scoring.Category) (int, error) {
	if err := r.checkTurn(sessionID); err != nil {
		return 0, err
	}
	player := r.players[r.current]
	if !r.policy.AllowRecommit && player.Sheet.Filled(c) {
		return 0, ErrCategoryFilled
	}

	score := scoring.Score(c, r.dice)
	player.Sheet[c] = score

	r.log.Info().
		Str("session_id", player.SessionID).
		Str("category", c.ID()).
		Int("score", score).
		Int("total", player.Sheet.Total()).
		Msg("category committed")

	r.current = (r.current + 1) % len(r.players)
	r.resetTurn()

	r.broadcastSnapshot(EventStateUpdated)
	r.finishIfComplete()
	return score, nil
}

// leave removes the session and keeps the turn index on a valid seat. It
// reports whether the roster is now empty.
func (r *Room) leave(sessionID string) (bool, error) {
	idx := r.indexOf(sessionID)
	if idx < 0 {
		return false, ErrNotInRoom
	}
	r.players = slices.Delete(r.players, idx, idx+1)
	r.log.Info().Str("session_id", sessionID).Int("players", len(r.players)).Msg("player left")

	if len(r.players) == 0 {
		r.closed = true
		return true, nil
	}

	inGame := r.phase == PhaseInProgress
	if inGame {
		switch {
		case idx < r.current:
			r.current--
		case idx == r.current:
			// the next seat slid into idx
			r.current %= len(r.players)
			r.resetTurn()
		}
	}
	r.current %= len(r.players)

	r.broadcastRoster()
	if inGame {
		r.broadcastSnapshot(EventStateUpdated)
		r.finishIfComplete()
	}
	return false, nil
}

func (r *Room) finishIfComplete() {
	if r.finished || r.Phase() != PhaseComplete {
		return
	}
	r.finished = true
	res := r.result()

	r.log.Info().Strs("winners", res.Winners).Bool("draw", res.Draw).Msg("game finished")
	r.emit(Event{Kind: EventGameFinished, Payload: res}, "")
}

func (r *Room) result() Result {
	standings := make([]Standing, 0, len(r.players))
	for _, p := range r.players {
		standings = append(standings, Standing{
			ID:    p.SessionID,
			Name:  p.Name,
			Bonus: p.Sheet.Bonus(),
			Total: p.Sheet.Total(),
		})
	}
	sort.SliceStable(standings, func(i, j int) bool { return standings[i].Total > standings[j].Total })

	winners := []string{}
	for _, s := range standings {
		if s.Total != standings[0].Total {
			break
		}
		winners = append(winners, s.ID)
	}
	return Result{
		RoomCode:  r.code,
		Standings: standings,
		Winners:   winners,
		Draw:      len(winners) > 1,
	}
}

/* =========================
   Snapshot + Broadcast
   ========================= */

func (r *Room) views() []PlayerView {
	out := make([]PlayerView, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.view())
	}
	return out
}

// snapshotFor builds the room state as seen by sessionID. Under
// HoldBroadcastNone only the current player sees the held dice.
func (r *Room) snapshotFor(sessionID string) Snapshot {
	phase := r.Phase()
	snap := Snapshot{
		RoomCode:           r.code,
		Phase:              phase.String(),
		GameStarted:        phase != PhaseLobby,
		Players:            r.views(),
		CurrentPlayerIndex: r.current,
		Dice:               r.dice,
		Held:               r.held,
		RollsLeft:          r.rollsLeft,
	}
	if r.policy.HoldBroadcast == HoldBroadcastNone && phase != PhaseLobby && r.players[r.current].SessionID != sessionID {
		snap.Held = Held{}
	}
	return snap
}

func (r *Room) broadcastSnapshot(kind EventKind) {
	for _, p := range r.players {
		snap := r.snapshotFor(p.SessionID)
		var payload any = snap
		if kind == EventStateUpdated {
			payload = StateUpdate{Room: &snap}
		}
		r.sender.Send(p.SessionID, Event{Kind: kind, Payload: payload})
	}
}

func (r *Room) broadcastRoster() {
	r.emit(Event{Kind: EventRosterUpdated, Payload: Roster{RoomCode: r.code, Players: r.views()}}, "")
}

// emit sends ev to every player except the given session.
func (r *Room) emit(ev Event, except string) {
	for _, p := range r.players {
		if p.SessionID == except {
			continue
		}
		r.sender.Send(p.SessionID, ev)
	}
}
