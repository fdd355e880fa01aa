package account

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/quickroll/initiative/internal/catalog"
	"github.com/quickroll/initiative/internal/combat"
	"github.com/quickroll/initiative/internal/storage"
)

const (
	bcryptCost = 12

	// maxHistory bounds each game session's combat history. Oldest
	// records are dropped once the cap is reached.
	maxHistory = 100

	defaultSessionName = "Default Session"
)

// SessionInfo is the public slice of a game session handed to clients.
type SessionInfo struct {
	ID       string `json:"id"`
	PublicID string `json:"sessionId"`
	Name     string `json:"name"`
}

// Store provides every account operation over a backing document store.
// The whole account document is the unit of read-modify-write; the
// store's own lock serializes those cycles and covers every reader,
// since the flush worker mutates documents concurrently with request
// handlers.
type Store struct {
	files storage.Storer[*DM]

	mu sync.Mutex
	// active caches auth session id -> active game session public id so
	// a state push does not re-read the account document. Invalidated
	// when sessions are switched or deleted.
	active map[string]string
}

func NewStore(files storage.Storer[*DM]) *Store {
	return &Store{
		files:  files,
		active: map[string]string{},
	}
}

// Create registers a new DM with one default game session. The returned
// auth session id is also the first game session's public id, so a
// viewer bookmark made on day one keeps working.
func (s *Store) Create(firstName, lastName, email, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dm := range s.files.GetAll() {
		if strings.EqualFold(dm.Email, email) {
			return "", ErrEmailTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	authID := s.unusedSessionID()
	now := time.Now().UTC()
	dm := &DM{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hash),
		SessionID:    authID,
		CreatedAt:    now,
	}
	first := &GameSession{
		ID:            uuid.New().String(),
		PublicID:      authID,
		Name:          defaultSessionName,
		CreatedAt:     now,
		CombatState:   combat.NewState(),
		CombatHistory: []*combat.Record{},
	}
	dm.GameSessions = []*GameSession{first}
	dm.ActiveGameSessionID = first.ID
	dm.CustomMonsters = []*catalog.CustomMonster{}

	if err := s.files.Save(authID, dm); err != nil {
		return "", fmt.Errorf("saving account: %w", err)
	}
	return authID, nil
}

// Login verifies credentials and returns the account.
func (s *Store) Login(email, password string) (*DM, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *DM
	for _, dm := range s.files.GetAll() {
		if strings.EqualFold(dm.Email, email) {
			found = dm
			break
		}
	}
	if found == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return found, nil
}

// BySessionID looks up an account by its auth session id.
func (s *Store) BySessionID(authID string) (*DM, bool) {
	return s.files.Get(authID)
}

// ByGameSessionID looks up the account owning the game session with the
// given public id. Used by viewer subscribe and join.
func (s *Store) ByGameSessionID(publicID string) (*DM, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byGameSessionID(publicID)
}

// byGameSessionID is the lookup behind every session-keyed operation.
// Callers hold s.mu.
func (s *Store) byGameSessionID(publicID string) (*DM, bool) {
	for _, dm := range s.files.GetAll() {
		if dm.sessionByPublicID(publicID) != nil {
			return dm, true
		}
	}
	return nil, false
}

// ActivePublicID resolves an auth session id to the public id of the
// account's active game session. This is the session resolver the
// boundary consults on every controller request.
func (s *Store) ActivePublicID(authID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.active[authID]; ok {
		return id, nil
	}

	dm, ok := s.files.Get(authID)
	if !ok {
		return "", ErrNotFound
	}
	if len(dm.GameSessions) == 0 {
		return "", ErrNoActiveSession
	}
	active := dm.session(dm.ActiveGameSessionID)
	if active == nil {
		active = dm.GameSessions[0]
	}

	s.active[authID] = active.PublicID
	return active.PublicID, nil
}

// ListSessions returns the account's game sessions (public fields only)
// and the active session's internal id.
func (s *Store) ListSessions(authID string) ([]SessionInfo, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.files.Get(authID)
	if !ok {
		return nil, "", ErrNotFound
	}
	infos := make([]SessionInfo, 0, len(dm.GameSessions))
	for _, gs := range dm.GameSessions {
		infos = append(infos, SessionInfo{ID: gs.ID, PublicID: gs.PublicID, Name: gs.Name})
	}
	activeID := dm.ActiveGameSessionID
	if dm.session(activeID) == nil && len(dm.GameSessions) > 0 {
		activeID = dm.GameSessions[0].ID
	}
	return infos, activeID, nil
}

// CreateSession adds a new empty game session.
func (s *Store) CreateSession(authID, name string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.files.Get(authID)
	if !ok {
		return nil, ErrNotFound
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "New Session"
	}
	gs := &GameSession{
		ID:            uuid.New().String(),
		PublicID:      s.unusedSessionID(),
		Name:          name,
		CreatedAt:     time.Now().UTC(),
		CombatState:   combat.NewState(),
		CombatHistory: []*combat.Record{},
	}
	dm.GameSessions = append(dm.GameSessions, gs)

	if err := s.files.Save(dm.SessionID, dm); err != nil {
		return nil, fmt.Errorf("saving account: %w", err)
	}
	return &SessionInfo{ID: gs.ID, PublicID: gs.PublicID, Name: gs.Name}, nil
}

// RenameSession renames a game session. Blank names get a placeholder.
func (s *Store) RenameSession(authID, sessionUUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.files.Get(authID)
	if !ok {
		return ErrNotFound
	}
	gs := dm.session(sessionUUID)
	if gs == nil {
		return ErrSessionNotFound
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Unnamed Session"
	}
	gs.Name = name
	if err := s.files.Save(dm.SessionID, dm); err != nil {
		return fmt.Errorf("saving account: %w", err)
	}
	return nil
}

// DeleteSession removes a game session. Deleting the last remaining
// session is rejected with ErrLastSession; deleting the active session
// switches to the first remaining one.
func (s *Store) DeleteSession(authID, sessionUUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.files.Get(authID)
	if !ok {
		return ErrNotFound
	}
	if len(dm.GameSessions) <= 1 {
		return ErrLastSession
	}
	if dm.session(sessionUUID) == nil {
		return ErrSessionNotFound
	}

	kept := dm.GameSessions[:0]
	for _, gs := range dm.GameSessions {
		if gs.ID != sessionUUID {
			kept = append(kept, gs)
		}
	}
	dm.GameSessions = kept
	if dm.ActiveGameSessionID == sessionUUID {
		dm.ActiveGameSessionID = dm.GameSessions[0].ID
	}

	// Next resolve re-reads from the document.
	delete(s.active, authID)

	if err := s.files.Save(dm.SessionID, dm); err != nil {
		return fmt.Errorf("saving account: %w", err)
	}
	return nil
}

// SwitchSession makes the given game session active and returns its
// public id.
func (s *Store) SwitchSession(authID, sessionUUID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.files.Get(authID)
	if !ok {
		return "", ErrNotFound
	}
	gs := dm.session(sessionUUID)
	if gs == nil {
		return "", ErrSessionNotFound
	}
	dm.ActiveGameSessionID = sessionUUID
	s.active[authID] = gs.PublicID

	if err := s.files.Save(dm.SessionID, dm); err != nil {
		return "", fmt.Errorf("saving account: %w", err)
	}
	return gs.PublicID, nil
}

// CombatState returns the stored state for a game session public id.
// The second return is false when no such session exists.
func (s *Store) CombatState(publicID string) (*combat.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.byGameSessionID(publicID)
	if !ok {
		return nil, false, nil
	}
	gs := dm.sessionByPublicID(publicID)
	if gs.CombatState == nil {
		return combat.NewState(), true, nil
	}
	return gs.CombatState.Clone(), true, nil
}

// SaveCombatState writes the session's state into the account document.
func (s *Store) SaveCombatState(publicID string, st *combat.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.byGameSessionID(publicID)
	if !ok {
		return ErrSessionNotFound
	}
	dm.sessionByPublicID(publicID).CombatState = st.Clone()
	return s.files.Save(dm.SessionID, dm)
}

// AppendRecord appends a combat record to the session's history,
// dropping the oldest entries beyond the cap.
func (s *Store) AppendRecord(publicID string, rec *combat.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.byGameSessionID(publicID)
	if !ok {
		return ErrSessionNotFound
	}
	gs := dm.sessionByPublicID(publicID)
	gs.CombatHistory = append(gs.CombatHistory, rec)
	if len(gs.CombatHistory) > maxHistory {
		gs.CombatHistory = gs.CombatHistory[len(gs.CombatHistory)-maxHistory:]
	}
	return s.files.Save(dm.SessionID, dm)
}

// Records returns the session's combat history, newest first.
func (s *Store) Records(publicID string) ([]*combat.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.byGameSessionID(publicID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	history := dm.sessionByPublicID(publicID).CombatHistory
	out := make([]*combat.Record, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		out = append(out, history[i])
	}
	return out, nil
}

// DeleteRecord removes one record from the session's history.
func (s *Store) DeleteRecord(publicID, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.byGameSessionID(publicID)
	if !ok {
		return ErrSessionNotFound
	}
	gs := dm.sessionByPublicID(publicID)
	kept := gs.CombatHistory[:0]
	for _, r := range gs.CombatHistory {
		if r.ID != recordID {
			kept = append(kept, r)
		}
	}
	gs.CombatHistory = kept
	return s.files.Save(dm.SessionID, dm)
}

// ClearRecords empties the session's combat history.
func (s *Store) ClearRecords(publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.byGameSessionID(publicID)
	if !ok {
		return ErrSessionNotFound
	}
	dm.sessionByPublicID(publicID).CombatHistory = []*combat.Record{}
	return s.files.Save(dm.SessionID, dm)
}

// CustomMonsters implements catalog.CustomSource.
func (s *Store) CustomMonsters(authID string) []*catalog.CustomMonster {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.files.Get(authID)
	if !ok {
		return nil
	}
	return append([]*catalog.CustomMonster(nil), dm.CustomMonsters...)
}

// AddMonster stores a new custom monster for the account.
func (s *Store) AddMonster(authID string, t catalog.Template) (*catalog.CustomMonster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.files.Get(authID)
	if !ok {
		return nil, ErrNotFound
	}
	m := &catalog.CustomMonster{Template: t, ID: uuid.New().String()}
	dm.CustomMonsters = append(dm.CustomMonsters, m)
	if err := s.files.Save(dm.SessionID, dm); err != nil {
		return nil, fmt.Errorf("saving account: %w", err)
	}
	return m, nil
}

// UpdateMonster replaces the fields of an existing custom monster.
func (s *Store) UpdateMonster(authID, monsterID string, t catalog.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.files.Get(authID)
	if !ok {
		return ErrNotFound
	}
	for i, m := range dm.CustomMonsters {
		if m.ID == monsterID {
			// Replace rather than mutate; handed-out slices share the
			// old pointer.
			dm.CustomMonsters[i] = &catalog.CustomMonster{Template: t, ID: monsterID}
			return s.files.Save(dm.SessionID, dm)
		}
	}
	return ErrMonsterNotFound
}

// DeleteMonster removes a custom monster.
func (s *Store) DeleteMonster(authID, monsterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := s.files.Get(authID)
	if !ok {
		return ErrNotFound
	}
	kept := dm.CustomMonsters[:0]
	for _, m := range dm.CustomMonsters {
		if m.ID != monsterID {
			kept = append(kept, m)
		}
	}
	dm.CustomMonsters = kept
	return s.files.Save(dm.SessionID, dm)
}

// unusedSessionID generates a session id not already in use as an auth
// id or any game session's public id. Callers hold s.mu.
func (s *Store) unusedSessionID() string {
	for {
		id := NewSessionID()
		if !s.sessionIDInUse(id) {
			return id
		}
	}
}

func (s *Store) sessionIDInUse(id string) bool {
	for _, dm := range s.files.GetAll() {
		if dm.SessionID == id || dm.sessionByPublicID(id) != nil {
			return true
		}
	}
	return false
}
