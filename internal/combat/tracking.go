package combat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-errors"
)

// EventKind classifies one state-affecting occurrence during a tracked
// combat.
type EventKind string

const (
	EventDamage          EventKind = "damage"
	EventHeal            EventKind = "heal"
	EventConditionAdd    EventKind = "condition_add"
	EventConditionRemove EventKind = "condition_remove"
	EventRoundAdvance    EventKind = "round_advance"
)

// Event is an immutable record of one occurrence during a tracked
// combat. The actor is the combatant whose turn it was when the event
// happened; the target is the combatant affected.
type Event struct {
	Kind  EventKind `json:"type"`
	Round int       `json:"round"`

	ActorID   string `json:"actorId,omitempty"`
	ActorName string `json:"actorName,omitempty"`
	ActorKind Kind   `json:"actorType,omitempty"`

	TargetID   string `json:"combatantId"`
	TargetName string `json:"combatantName"`
	TargetKind Kind   `json:"combatantType"`

	Value     int    `json:"value,omitempty"`
	Condition string `json:"condition,omitempty"`
	HPBefore  *int   `json:"hpBefore,omitempty"`
	HPAfter   *int   `json:"hpAfter,omitempty"`

	// CausedDown marks a damage event that took the target from
	// positive HP to exactly zero.
	CausedDown bool `json:"causedDown,omitempty"`
}

// Summary is the per-combatant rollup maintained while a combat is
// tracked and frozen into the record when it ends.
type Summary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Kind         Kind   `json:"type"`
	MaxHP        int    `json:"maxHp"`
	StartHP      int    `json:"startHp"`
	FinalHP      int    `json:"finalHp"`
	TotalDamage  int    `json:"totalDamage"`
	TotalHealing int    `json:"totalHealing"`
	WasSlain     bool   `json:"wasSlain"`
}

// Record is the durable artifact of one finished or checkpointed combat.
type Record struct {
	ID           string     `json:"id"`
	StartedAt    time.Time  `json:"startedAt"`
	EndedAt      time.Time  `json:"endedAt"`
	Rounds       int        `json:"rounds"`
	Participants []*Summary `json:"participants"`
	Events       []*Event   `json:"events"`
}

// Validate checks the minimal shape of an externally supplied record.
func (r *Record) Validate() error {
	el := errors.NewErrorList()

	if r.ID == "" || len(r.ID) > MaxIDLen {
		el.Add(fmt.Errorf("record id must be 1-%d characters", MaxIDLen))
	}
	if r.StartedAt.IsZero() {
		el.Add(fmt.Errorf("record startedAt must be set"))
	}
	if r.Participants == nil {
		el.Add(fmt.Errorf("record participants must be present"))
	}

	return el.Err()
}

// Tracking accumulates events and summaries between StartCombat and
// EndCombat. It is discarded without producing a record when
// initiatives are reset mid-fight.
type Tracking struct {
	startedAt time.Time
	events    []*Event
	summaries map[string]*Summary
	order     []string
}

func newTracking(start time.Time, participants []*Combatant) *Tracking {
	t := &Tracking{
		startedAt: start,
		summaries: map[string]*Summary{},
	}
	for _, c := range participants {
		t.register(c)
	}
	return t
}

// register snapshots a combatant's starting HP so late arrivals still
// show up in the end-of-combat summary.
func (t *Tracking) register(c *Combatant) {
	if _, ok := t.summaries[c.ID]; ok {
		return
	}
	t.summaries[c.ID] = &Summary{
		ID:      c.ID,
		Name:    c.Name,
		Kind:    c.Kind,
		MaxHP:   c.MaxHP,
		StartHP: c.CurrentHP,
		FinalHP: c.CurrentHP,
	}
	t.order = append(t.order, c.ID)
}

func (t *Tracking) append(ev *Event) {
	t.events = append(t.events, ev)
}

// buildRecord freezes the tracking state into a Record. FinalHP is
// synced from the live state for combatants still present; removed
// combatants keep the last HP the tracker saw.
func (t *Tracking) buildRecord(endedAt time.Time, s *State) *Record {
	participants := make([]*Summary, 0, len(t.order))
	for _, id := range t.order {
		sum := *t.summaries[id]
		if c := s.Find(id); c != nil {
			sum.FinalHP = c.CurrentHP
		}
		participants = append(participants, &sum)
	}
	return &Record{
		ID:           uuid.New().String(),
		StartedAt:    t.startedAt,
		EndedAt:      endedAt,
		Rounds:       s.Round,
		Participants: participants,
		Events:       append([]*Event(nil), t.events...),
	}
}
