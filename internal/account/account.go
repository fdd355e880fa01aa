// Package account owns DM accounts and their game sessions: opaque
// session identifiers, credentials, per-session combat state, bounded
// combat history, and custom monsters.
package account

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"

	"github.com/quickroll/initiative/internal/catalog"
	"github.com/quickroll/initiative/internal/combat"
)

// GameSession is one independent combat-tracking context. The internal
// UUID identifies it for management actions; the public 6-char id is
// what viewers connect with.
type GameSession struct {
	ID        string    `json:"id"`
	PublicID  string    `json:"sessionId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`

	CombatState   *combat.State    `json:"combatState"`
	CombatHistory []*combat.Record `json:"combatHistory"`
}

// DM is one controller account. Exactly one DM writes to each of its
// game sessions.
type DM struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`

	// SessionID is the stable auth identifier carried in the dm_auth
	// cookie. It doubles as the storage key.
	SessionID string `json:"sessionId"`

	ActiveGameSessionID string                   `json:"activeGameSessionId"`
	GameSessions        []*GameSession           `json:"gameSessions"`
	CustomMonsters      []*catalog.CustomMonster `json:"customMonsters"`

	CreatedAt time.Time `json:"createdAt"`
}

func (d *DM) Validate() error {
	el := errors.NewErrorList()

	if d.Email == "" {
		el.Add(fmt.Errorf("email must be set"))
	}
	if d.PasswordHash == "" {
		el.Add(fmt.Errorf("passwordHash must be set"))
	}
	if !IsValidSessionID(d.SessionID) {
		el.Add(fmt.Errorf("sessionId must be 6 characters from the session alphabet"))
	}
	for i, gs := range d.GameSessions {
		if gs.ID == "" {
			el.Add(fmt.Errorf("game session %d: id must be set", i))
		}
		if !IsValidSessionID(gs.PublicID) {
			el.Add(fmt.Errorf("game session %d: invalid public id %q", i, gs.PublicID))
		}
	}

	return el.Err()
}

// session returns the game session with the given internal uuid.
func (d *DM) session(uuid string) *GameSession {
	for _, gs := range d.GameSessions {
		if gs.ID == uuid {
			return gs
		}
	}
	return nil
}

// sessionByPublicID returns the game session with the given public id.
func (d *DM) sessionByPublicID(publicID string) *GameSession {
	for _, gs := range d.GameSessions {
		if gs.PublicID == publicID {
			return gs
		}
	}
	return nil
}
