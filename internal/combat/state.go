package combat

import (
	"fmt"
	"sort"

	"github.com/pixil98/go-errors"
)

// State is the authoritative session state: the full roster in insertion
// order (not turn order), the current turn holder, and the round counter.
// This is the unit that is broadcast, cached, and persisted.
type State struct {
	Combatants  []*Combatant `json:"combatants"`
	CurrentTurn TurnID       `json:"currentTurnId"`
	Round       int          `json:"round"`
}

// NewState returns an empty session state at round 1.
func NewState() *State {
	return &State{Combatants: []*Combatant{}, Round: 1}
}

// Validate checks the full pushed payload. A state that fails here must
// be rejected whole; nothing is partially applied.
func (s *State) Validate() error {
	el := errors.NewErrorList()

	if s.Combatants == nil {
		el.Add(fmt.Errorf("combatants must be present"))
	}
	if len(s.Combatants) > MaxCombatants {
		el.Add(fmt.Errorf("at most %d combatants allowed", MaxCombatants))
	}
	for i, c := range s.Combatants {
		if c == nil {
			el.Add(fmt.Errorf("combatant %d: must be an object", i))
			continue
		}
		if err := c.Validate(); err != nil {
			el.Add(fmt.Errorf("combatant %d: %w", i, err))
		}
	}
	if len(s.CurrentTurn) > MaxIDLen {
		el.Add(fmt.Errorf("currentTurnId must be at most %d characters", MaxIDLen))
	}
	if s.Round < 1 || s.Round > MaxRound {
		el.Add(fmt.Errorf("round must be between 1 and %d", MaxRound))
	}

	return el.Err()
}

// Clone returns a deep copy, safe to hand to another goroutine.
func (s *State) Clone() *State {
	out := &State{
		Combatants:  make([]*Combatant, len(s.Combatants)),
		CurrentTurn: s.CurrentTurn,
		Round:       s.Round,
	}
	for i, c := range s.Combatants {
		out.Combatants[i] = c.Clone()
	}
	return out
}

// Find returns the combatant with the given id, or nil.
func (s *State) Find(id string) *Combatant {
	for _, c := range s.Combatants {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Players returns every player-kind combatant, benched or not.
func (s *State) Players() []*Combatant {
	var out []*Combatant
	for _, c := range s.Combatants {
		if c.Kind == KindPlayer {
			out = append(out, c)
		}
	}
	return out
}

// Active returns the combatants participating in the initiative order.
func (s *State) Active() []*Combatant {
	var out []*Combatant
	for _, c := range s.Combatants {
		if c.Active() {
			out = append(out, c)
		}
	}
	return out
}

// SortCombatants orders a list by initiative descending. Unset
// initiative sorts after every set value. The sort is stable, so ties
// and unset-vs-unset keep their relative input order.
func SortCombatants(list []*Combatant) []*Combatant {
	out := append([]*Combatant(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Initiative, out[j].Initiative
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return out
}

// TurnOrder is the sorted list of combatants eligible to receive a turn:
// active, and not an enemy at 0 HP.
func (s *State) TurnOrder() []*Combatant {
	var eligible []*Combatant
	for _, c := range s.Combatants {
		if c.Eligible() {
			eligible = append(eligible, c)
		}
	}
	return SortCombatants(eligible)
}
