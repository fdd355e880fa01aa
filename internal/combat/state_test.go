package combat

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func namedCombatant(id string, kind Kind, initiative Initiative) *Combatant {
	c := &Combatant{
		ID:        id,
		Name:      id,
		Kind:      kind,
		AC:        12,
		MaxHP:     20,
		CurrentHP: 20,
		Statuses:  []string{},
	}
	c.Initiative = initiative
	c.SetActive(true)
	return c
}

func ids(list []*Combatant) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.ID
	}
	return out
}

func TestSortCombatants(t *testing.T) {
	tests := map[string]struct {
		in  []*Combatant
		exp []string
	}{
		"descending by initiative": {
			in: []*Combatant{
				namedCombatant("a", KindPlayer, InitiativeOf(3)),
				namedCombatant("b", KindPlayer, InitiativeOf(20)),
				namedCombatant("c", KindPlayer, InitiativeOf(11)),
			},
			exp: []string{"b", "c", "a"},
		},
		"unset sorts last": {
			in: []*Combatant{
				namedCombatant("a", KindPlayer, nil),
				namedCombatant("b", KindPlayer, InitiativeOf(1)),
				namedCombatant("c", KindPlayer, nil),
			},
			exp: []string{"b", "a", "c"},
		},
		"ties keep insertion order": {
			in: []*Combatant{
				namedCombatant("a", KindPlayer, InitiativeOf(10)),
				namedCombatant("b", KindPlayer, InitiativeOf(10)),
				namedCombatant("c", KindPlayer, InitiativeOf(10)),
			},
			exp: []string{"a", "b", "c"},
		},
		"fractional tiebreaker": {
			in: []*Combatant{
				namedCombatant("a", KindPlayer, InitiativeOf(10)),
				namedCombatant("b", KindPlayer, InitiativeOf(10.5)),
			},
			exp: []string{"b", "a"},
		},
		"empty list": {
			in:  nil,
			exp: []string{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := ids(SortCombatants(tt.in))
			testutil.AssertEqual(t, "length", len(got), len(tt.exp))
			for i := range tt.exp {
				testutil.AssertEqual(t, "order", got[i], tt.exp[i])
			}
		})
	}
}

func TestSortCombatants_DoesNotMutateInput(t *testing.T) {
	in := []*Combatant{
		namedCombatant("a", KindPlayer, InitiativeOf(1)),
		namedCombatant("b", KindPlayer, InitiativeOf(2)),
	}

	SortCombatants(in)

	testutil.AssertEqual(t, "first", in[0].ID, "a")
	testutil.AssertEqual(t, "second", in[1].ID, "b")
}

func TestState_TurnOrder(t *testing.T) {
	deadEnemy := namedCombatant("dead", KindEnemy, InitiativeOf(18))
	deadEnemy.CurrentHP = 0
	benched := namedCombatant("benched", KindPlayer, InitiativeOf(19))
	benched.SetActive(false)

	s := &State{
		Combatants: []*Combatant{
			namedCombatant("slow", KindPlayer, InitiativeOf(4)),
			deadEnemy,
			benched,
			namedCombatant("fast", KindEnemy, InitiativeOf(15)),
			namedCombatant("unrolled", KindPlayer, nil),
		},
		Round: 1,
	}

	got := ids(s.TurnOrder())

	exp := []string{"fast", "slow", "unrolled"}
	testutil.AssertEqual(t, "length", len(got), len(exp))
	for i := range exp {
		testutil.AssertEqual(t, "order", got[i], exp[i])
	}
}

func TestState_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate  func(s *State)
		expErrs []string
	}{
		"valid state": {
			mutate: func(s *State) {},
		},
		"nil combatants": {
			mutate:  func(s *State) { s.Combatants = nil },
			expErrs: []string{"combatants must be present"},
		},
		"too many combatants": {
			mutate: func(s *State) {
				for i := 0; i <= MaxCombatants; i++ {
					s.Combatants = append(s.Combatants, validCombatant())
				}
			},
			expErrs: []string{"at most 100 combatants allowed"},
		},
		"invalid combatant is attributed": {
			mutate: func(s *State) {
				bad := validCombatant()
				bad.MaxHP = 0
				s.Combatants = append(s.Combatants, bad)
			},
			expErrs: []string{"combatant 0", "maxHp must be between 1 and 99999"},
		},
		"round too low": {
			mutate:  func(s *State) { s.Round = 0 },
			expErrs: []string{"round must be between 1 and 9999"},
		},
		"round too high": {
			mutate:  func(s *State) { s.Round = MaxRound + 1 },
			expErrs: []string{"round must be between 1 and 9999"},
		},
		"turn id too long": {
			mutate:  func(s *State) { s.CurrentTurn = TurnID(strings.Repeat("x", MaxIDLen+1)) },
			expErrs: []string{"currentTurnId must be at most 36 characters"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewState()
			tt.mutate(s)

			err := s.Validate()

			if len(tt.expErrs) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Errorf("expected errors %v, got nil", tt.expErrs)
				return
			}
			for _, e := range tt.expErrs {
				if !strings.Contains(err.Error(), e) {
					t.Errorf("error %q does not contain %q", err.Error(), e)
				}
			}
		})
	}
}

func TestState_Clone(t *testing.T) {
	s := &State{
		Combatants:  []*Combatant{namedCombatant("a", KindPlayer, InitiativeOf(5))},
		CurrentTurn: "a",
		Round:       3,
	}

	clone := s.Clone()
	clone.Combatants[0].CurrentHP = 1
	clone.Round = 9
	clone.CurrentTurn = ""

	testutil.AssertEqual(t, "original hp", s.Combatants[0].CurrentHP, 20)
	testutil.AssertEqual(t, "original round", s.Round, 3)
	testutil.AssertEqual(t, "original turn", s.CurrentTurn, TurnID("a"))
}
