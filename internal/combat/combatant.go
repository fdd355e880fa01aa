package combat

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/pixil98/go-errors"
)

// Validation bounds for combatants and session state. Anything outside
// these limits is rejected at the boundary before it reaches a session.
const (
	MaxCombatants = 100
	MaxIDLen      = 36
	MaxNameLen    = 100
	MaxStatusLen  = 50
	MaxStatuses   = 20
	MaxAvatarLen  = 1_000_000
	MaxRound      = 9_999

	MaxAC = 99
	MaxHP = 99_999
)

// Kind identifies which side of the table a combatant belongs to.
type Kind string

const (
	KindPlayer Kind = "player"
	KindEnemy  Kind = "enemy"
)

// Initiative is a combatant's rolled initiative. nil means unset; unset
// sorts after every set value. Marshals to JSON null when unset.
type Initiative = *float64

// InitiativeOf is a convenience constructor for a set initiative value.
func InitiativeOf(v float64) Initiative {
	return &v
}

// Combatant is one participant in a session's initiative order.
//
// ID and Kind are immutable for the combatant's lifetime. TemplateName,
// MonsterType, ShowAC, AvatarURL and ImgURL are display metadata the
// engine never interprets.
type Combatant struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Kind       Kind       `json:"type"`
	AC         int        `json:"ac"`
	MaxHP      int        `json:"maxHp"`
	CurrentHP  int        `json:"currentHp"`
	Statuses   []string   `json:"statuses"`
	Initiative Initiative `json:"initiative"`
	TempHP     int        `json:"tempHp"`

	TemplateName string `json:"templateName,omitempty"`
	MonsterType  string `json:"monsterType,omitempty"`
	ShowAC       *bool  `json:"showAc,omitempty"`

	// InCombat false means the combatant is in the roster but benched
	// from the initiative order. Absent (nil) means in combat, so saved
	// state from before the field existed still loads correctly.
	InCombat *bool `json:"inCombat,omitempty"`

	AvatarURL string `json:"avatarUrl,omitempty"`
	ImgURL    string `json:"imgUrl,omitempty"`
}

// Active reports whether the combatant participates in the initiative
// order at all. Benched players are inactive but stay in the roster.
func (c *Combatant) Active() bool {
	return c.InCombat == nil || *c.InCombat
}

// SetActive benches or unbenches the combatant.
func (c *Combatant) SetActive(v bool) {
	c.InCombat = &v
}

// Eligible reports whether the combatant can receive a turn. Dead
// enemies stay in the roster but are skipped during advancement.
func (c *Combatant) Eligible() bool {
	if !c.Active() {
		return false
	}
	if c.Kind == KindEnemy && c.CurrentHP <= 0 {
		return false
	}
	return true
}

// Validate checks a single combatant against the wire-format bounds.
func (c *Combatant) Validate() error {
	el := errors.NewErrorList()

	if c.ID == "" || len(c.ID) > MaxIDLen {
		el.Add(fmt.Errorf("id must be 1-%d characters", MaxIDLen))
	}
	if len(c.Name) > MaxNameLen {
		el.Add(fmt.Errorf("name must be at most %d characters", MaxNameLen))
	}
	if c.Kind != KindPlayer && c.Kind != KindEnemy {
		el.Add(fmt.Errorf("type must be %q or %q", KindPlayer, KindEnemy))
	}
	if c.AC < 0 || c.AC > MaxAC {
		el.Add(fmt.Errorf("ac must be between 0 and %d", MaxAC))
	}
	if c.MaxHP < 1 || c.MaxHP > MaxHP {
		el.Add(fmt.Errorf("maxHp must be between 1 and %d", MaxHP))
	}
	if c.CurrentHP < -MaxHP || c.CurrentHP > MaxHP {
		el.Add(fmt.Errorf("currentHp must be between %d and %d", -MaxHP, MaxHP))
	}
	if c.TempHP < 0 || c.TempHP > MaxHP {
		el.Add(fmt.Errorf("tempHp must be between 0 and %d", MaxHP))
	}
	if c.Initiative != nil && (math.IsNaN(*c.Initiative) || math.IsInf(*c.Initiative, 0)) {
		el.Add(fmt.Errorf("initiative must be a finite number"))
	}
	if c.Statuses == nil {
		el.Add(fmt.Errorf("statuses must be present"))
	}
	if len(c.Statuses) > MaxStatuses {
		el.Add(fmt.Errorf("at most %d statuses allowed", MaxStatuses))
	}
	seen := map[string]struct{}{}
	for _, s := range c.Statuses {
		if len(s) > MaxStatusLen {
			el.Add(fmt.Errorf("status %q exceeds %d characters", s[:MaxStatusLen], MaxStatusLen))
			break
		}
		if _, ok := seen[s]; ok {
			el.Add(fmt.Errorf("duplicate status %q", s))
			break
		}
		seen[s] = struct{}{}
	}
	if len(c.TemplateName) > MaxNameLen {
		el.Add(fmt.Errorf("templateName must be at most %d characters", MaxNameLen))
	}
	if len(c.MonsterType) > MaxNameLen {
		el.Add(fmt.Errorf("monsterType must be at most %d characters", MaxNameLen))
	}
	if len(c.AvatarURL) > MaxAvatarLen {
		el.Add(fmt.Errorf("avatarUrl must be at most %d characters", MaxAvatarLen))
	}

	return el.Err()
}

// Clone returns a deep copy.
func (c *Combatant) Clone() *Combatant {
	out := *c
	if c.Statuses != nil {
		out.Statuses = append([]string(nil), c.Statuses...)
	}
	if c.Initiative != nil {
		v := *c.Initiative
		out.Initiative = &v
	}
	if c.ShowAC != nil {
		v := *c.ShowAC
		out.ShowAC = &v
	}
	if c.InCombat != nil {
		v := *c.InCombat
		out.InCombat = &v
	}
	return &out
}

// TurnID is the id of the combatant currently holding the turn. Empty
// means no turn is active, which marshals to JSON null so viewers see
// the same wire shape the controller sends.
type TurnID string

func (t TurnID) MarshalJSON() ([]byte, error) {
	if t == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

func (t *TurnID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ""
		return nil
	}
	return json.Unmarshal(b, (*string)(t))
}
