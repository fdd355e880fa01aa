package combat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnemyTemplate is the slice of a catalog entry the engine needs to
// spawn enemies. The full template (challenge rating, artwork) lives in
// the catalog package.
type EnemyTemplate struct {
	Name        string
	AC          int
	HP          int
	DexMod      int
	MonsterType string
	ImgURL      string
}

// Engine applies controller actions to a session state. It performs no
// I/O: callers persist and broadcast the resulting state themselves.
// Every reachable state has a defined outcome; no operation errors.
//
// A single logical writer drives one engine, so there is no internal
// locking.
type Engine struct {
	State    *State
	tracking *Tracking

	roll Roller
	now  func() time.Time
}

// EngineOpt configures an Engine.
type EngineOpt func(*Engine)

// WithRoller replaces the initiative die, for deterministic tests.
func WithRoller(r Roller) EngineOpt {
	return func(e *Engine) {
		e.roll = r
	}
}

// WithClock replaces the tracking clock.
func WithClock(now func() time.Time) EngineOpt {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine over the given state. A nil state starts
// an empty session.
func NewEngine(s *State, opts ...EngineOpt) *Engine {
	if s == nil {
		s = NewState()
	}
	e := &Engine{
		State: s,
		roll:  RollDie,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tracked reports whether a combat is currently being tracked.
func (e *Engine) Tracked() bool {
	return e.tracking != nil
}

// Events returns the working event log of the tracked combat.
func (e *Engine) Events() []*Event {
	if e.tracking == nil {
		return nil
	}
	return append([]*Event(nil), e.tracking.events...)
}

// AddPlayer appends a player at full HP with unset initiative.
func (e *Engine) AddPlayer(name string, ac, maxHP int) *Combatant {
	c := &Combatant{
		ID:        uuid.New().String(),
		Name:      name,
		Kind:      KindPlayer,
		AC:        ac,
		MaxHP:     maxHP,
		CurrentHP: maxHP,
		Statuses:  []string{},
	}
	c.SetActive(true)
	e.State.Combatants = append(e.State.Combatants, c)
	if e.tracking != nil {
		e.tracking.register(c)
	}
	return c
}

// AddEnemies spawns quantity enemies from a template. A group gets
// numbered names and an independently rolled initiative each so it does
// not act as one block; a single enemy is left unset for the controller
// to roll.
func (e *Engine) AddEnemies(tmpl EnemyTemplate, quantity int) []*Combatant {
	if quantity < 1 {
		return nil
	}
	added := make([]*Combatant, 0, quantity)
	for i := 0; i < quantity; i++ {
		name := tmpl.Name
		if quantity > 1 {
			name = fmt.Sprintf("%s %d", tmpl.Name, i+1)
		}
		c := &Combatant{
			ID:           uuid.New().String(),
			Name:         name,
			Kind:         KindEnemy,
			AC:           tmpl.AC,
			MaxHP:        tmpl.HP,
			CurrentHP:    tmpl.HP,
			Statuses:     []string{},
			TemplateName: tmpl.Name,
			MonsterType:  tmpl.MonsterType,
			ImgURL:       tmpl.ImgURL,
		}
		c.SetActive(true)
		if quantity > 1 {
			c.Initiative = InitiativeOf(RollInitiative(e.roll, tmpl.DexMod))
		}
		e.State.Combatants = append(e.State.Combatants, c)
		if e.tracking != nil {
			e.tracking.register(c)
		}
		added = append(added, c)
	}
	return added
}

// Remove deletes a combatant outright. If it held the current turn, the
// turn moves to the eligible combatant at the same position index in
// the freshly sorted order (index mod remaining length), so the
// rotation does not skip a beat.
func (e *Engine) Remove(id string) {
	e.reassignTurn(id)
	e.deleteCombatant(id)
}

// RemoveFromCombat benches a player (kept in the roster, initiative
// cleared) or deletes an enemy outright.
func (e *Engine) RemoveFromCombat(id string) {
	target := e.State.Find(id)
	if target == nil {
		return
	}
	e.reassignTurn(id)
	if target.Kind == KindEnemy {
		e.deleteCombatant(id)
		return
	}
	target.SetActive(false)
	target.Initiative = nil
}

// AddToCombat returns a benched player to the initiative order. The
// initiative stays unset until the controller rolls it.
func (e *Engine) AddToCombat(id string) {
	if c := e.State.Find(id); c != nil {
		c.SetActive(true)
	}
}

// SetInitiative sets or clears a combatant's rolled initiative.
func (e *Engine) SetInitiative(id string, v Initiative) {
	if c := e.State.Find(id); c != nil {
		c.Initiative = v
	}
}

// Update applies a controller edit to a combatant. No events are
// logged; use AdjustHP and ToggleStatus for tracked changes.
func (e *Engine) Update(id string, apply func(*Combatant)) {
	if c := e.State.Find(id); c != nil {
		apply(c)
	}
}

// AdjustHP damages or heals a combatant. Damage is absorbed by temp HP
// first; the remainder spills into current HP, floored at zero. Healing
// is capped at max HP. The effective HP change, not the raw request,
// decides which event is logged while a combat is tracked.
func (e *Engine) AdjustHP(id string, delta int) {
	c := e.State.Find(id)
	if c == nil {
		return
	}

	before := c.CurrentHP
	if delta < 0 && c.TempHP > 0 {
		absorbed := min(c.TempHP, -delta)
		spill := -delta - absorbed
		c.TempHP -= absorbed
		c.CurrentHP = max(0, c.CurrentHP-spill)
	} else {
		c.CurrentHP = max(0, min(c.MaxHP, c.CurrentHP+delta))
	}

	if e.tracking == nil {
		return
	}
	e.tracking.register(c)
	sum := e.tracking.summaries[c.ID]
	sum.FinalHP = c.CurrentHP

	effective := c.CurrentHP - before
	switch {
	case effective < 0:
		down := before > 0 && c.CurrentHP == 0
		sum.TotalDamage += -effective
		if down {
			sum.WasSlain = true
		}
		e.logEvent(c, &Event{
			Kind:       EventDamage,
			Value:      -effective,
			HPBefore:   &before,
			HPAfter:    &c.CurrentHP,
			CausedDown: down,
		})
	case effective > 0:
		sum.TotalHealing += effective
		if c.CurrentHP > 0 {
			sum.WasSlain = false
		}
		e.logEvent(c, &Event{
			Kind:     EventHeal,
			Value:    effective,
			HPBefore: &before,
			HPAfter:  &c.CurrentHP,
		})
	}
}

// SetTempHP sets temporary HP, floored at zero. No event is logged.
func (e *Engine) SetTempHP(id string, value int) {
	if c := e.State.Find(id); c != nil {
		c.TempHP = max(0, value)
	}
}

// ToggleStatus adds the status tag if absent, removes it if present.
func (e *Engine) ToggleStatus(id string, status string) {
	c := e.State.Find(id)
	if c == nil {
		return
	}
	for i, s := range c.Statuses {
		if s == status {
			c.Statuses = append(c.Statuses[:i], c.Statuses[i+1:]...)
			e.logCondition(c, EventConditionRemove, status)
			return
		}
	}
	if len(c.Statuses) >= MaxStatuses {
		return
	}
	c.Statuses = append(c.Statuses, status)
	e.logCondition(c, EventConditionAdd, status)
}

// ClearEnemies removes every enemy. Players are untouched. If an enemy
// held the current turn, the turn becomes unset.
func (e *Engine) ClearEnemies() {
	if cur := e.State.Find(string(e.State.CurrentTurn)); cur != nil && cur.Kind == KindEnemy {
		e.State.CurrentTurn = ""
	}
	kept := e.State.Combatants[:0]
	for _, c := range e.State.Combatants {
		if c.Kind == KindPlayer {
			kept = append(kept, c)
		}
	}
	e.State.Combatants = kept
}

// ResetInitiatives clears every initiative, unsets the turn, resets the
// round, and discards any in-progress tracking without a record.
func (e *Engine) ResetInitiatives() {
	for _, c := range e.State.Combatants {
		c.Initiative = nil
	}
	e.State.CurrentTurn = ""
	e.State.Round = 1
	e.tracking = nil
}

// ResetPlayers restores every player to full HP, no temp HP, no
// statuses, unset initiative, and active membership. Used for "new
// encounter, same party". Enemies are untouched and no event is logged.
func (e *Engine) ResetPlayers() {
	for _, c := range e.State.Combatants {
		if c.Kind != KindPlayer {
			continue
		}
		c.CurrentHP = c.MaxHP
		c.TempHP = 0
		c.Statuses = []string{}
		c.Initiative = nil
		c.SetActive(true)
	}
}

// StartCombat sets the turn to the first eligible combatant, resets the
// round, and begins tracking. A no-op when nobody is eligible.
func (e *Engine) StartCombat() {
	order := e.State.TurnOrder()
	if len(order) == 0 {
		return
	}
	e.State.CurrentTurn = TurnID(order[0].ID)
	e.State.Round = 1
	e.tracking = newTracking(e.now(), e.State.Active())
}

// NextTurn advances within the eligible order. Wrapping past the end
// increments the round. A stale turn pointer (the holder died or was
// benched since the order was computed) jumps to the first eligible
// combatant without touching the round.
func (e *Engine) NextTurn() {
	order := e.State.TurnOrder()
	if len(order) == 0 {
		return
	}
	if e.State.CurrentTurn == "" {
		e.State.CurrentTurn = TurnID(order[0].ID)
		e.State.Round = 1
		return
	}
	idx := indexOf(order, string(e.State.CurrentTurn))
	if idx < 0 {
		e.State.CurrentTurn = TurnID(order[0].ID)
		return
	}
	next := (idx + 1) % len(order)
	e.State.CurrentTurn = TurnID(order[next].ID)
	if next == 0 {
		e.State.Round++
		if e.tracking != nil {
			first := order[0]
			e.tracking.append(&Event{
				Kind:       EventRoundAdvance,
				Round:      e.State.Round,
				TargetID:   first.ID,
				TargetName: first.Name,
				TargetKind: first.Kind,
				Value:      e.State.Round,
			})
		}
	}
}

// PrevTurn retreats within the eligible order. Wrapping past the start
// decrements the round only above round 1. A stale turn pointer jumps
// to the last eligible combatant without touching the round.
func (e *Engine) PrevTurn() {
	order := e.State.TurnOrder()
	if len(order) == 0 {
		return
	}
	if e.State.CurrentTurn == "" {
		e.State.CurrentTurn = TurnID(order[len(order)-1].ID)
		return
	}
	idx := indexOf(order, string(e.State.CurrentTurn))
	if idx < 0 {
		e.State.CurrentTurn = TurnID(order[len(order)-1].ID)
		return
	}
	if idx == 0 && e.State.Round > 1 {
		e.State.Round--
	}
	e.State.CurrentTurn = TurnID(order[(idx-1+len(order))%len(order)].ID)
}

// EndCombat unsets the turn and resets the round. If a combat was being
// tracked, the finished record is returned for persistence; otherwise
// nil.
func (e *Engine) EndCombat() *Record {
	var rec *Record
	if e.tracking != nil {
		rec = e.tracking.buildRecord(e.now(), e.State)
		e.tracking = nil
	}
	e.State.CurrentTurn = ""
	e.State.Round = 1
	return rec
}

// SaveToChronicle checkpoints the in-progress combat as a record
// without ending it. The working event log is kept. Returns nil when no
// combat is tracked.
func (e *Engine) SaveToChronicle() *Record {
	if e.tracking == nil {
		return nil
	}
	return e.tracking.buildRecord(e.now(), e.State)
}

// reassignTurn moves the turn off a combatant that is about to leave
// the order. The replacement occupies the same position index in the
// sorted order, modulo the remaining length. This mirrors the behavior
// controllers have always seen, even for index/length combinations
// where it lands one slot ahead of the strict successor.
func (e *Engine) reassignTurn(id string) {
	if string(e.State.CurrentTurn) != id {
		return
	}

	var list []*Combatant
	for _, c := range e.State.Combatants {
		if c.Eligible() || c.ID == id {
			list = append(list, c)
		}
	}
	list = SortCombatants(list)

	idx := indexOf(list, id)
	var remaining []*Combatant
	for _, c := range list {
		if c.ID != id {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 || idx < 0 {
		e.State.CurrentTurn = ""
		return
	}
	e.State.CurrentTurn = TurnID(remaining[idx%len(remaining)].ID)
}

func (e *Engine) deleteCombatant(id string) {
	for i, c := range e.State.Combatants {
		if c.ID == id {
			e.State.Combatants = append(e.State.Combatants[:i], e.State.Combatants[i+1:]...)
			return
		}
	}
}

func (e *Engine) logEvent(target *Combatant, ev *Event) {
	ev.Round = e.State.Round
	ev.TargetID = target.ID
	ev.TargetName = target.Name
	ev.TargetKind = target.Kind
	if actor := e.State.Find(string(e.State.CurrentTurn)); actor != nil {
		ev.ActorID = actor.ID
		ev.ActorName = actor.Name
		ev.ActorKind = actor.Kind
	}
	e.tracking.append(ev)
}

func (e *Engine) logCondition(target *Combatant, kind EventKind, condition string) {
	if e.tracking == nil {
		return
	}
	e.logEvent(target, &Event{Kind: kind, Condition: condition})
}

func indexOf(list []*Combatant, id string) int {
	for i, c := range list {
		if c.ID == id {
			return i
		}
	}
	return -1
}
