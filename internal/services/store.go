package services

import (
	"sync"
	"time"

	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/sheet"
)

// Workspace is the in-memory state of one import session: the parsed
// sheet, the column mapping and the latest preview.
type Workspace struct {
	mu sync.Mutex

	ID             string
	OrganizationID string
	PeriodID       string
	Sheet          *sheet.Sheet
	Columns        []*importers.MatchedColumn
	Period         *entities.RegistrationPeriod
	Preview        *importers.Preview
	Reports        []importers.MemberImportReport

	pipeline   *importers.Pipeline
	committing bool
	touched    time.Time
}

// SessionStore keeps workspaces in memory until they are idle for longer
// than the TTL.
type SessionStore struct {
	mu         sync.Mutex
	workspaces map[string]*Workspace
	ttl        time.Duration
	now        func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		workspaces: make(map[string]*Workspace),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (s *SessionStore) Put(ws *Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws.touched = s.now()
	s.workspaces[ws.ID] = ws
}

// Get returns the workspace and marks it as used.
func (s *SessionStore) Get(id string) (*Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[id]
	if ok {
		ws.touched = s.now()
	}
	return ws, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workspaces, id)
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workspaces)
}

// Expire drops workspaces idle for longer than the TTL. Workspaces with a
// running commit are kept. It returns the ids of the dropped workspaces.
func (s *SessionStore) Expire() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	var expired []string
	for id, ws := range s.workspaces {
		if ws.touched.After(cutoff) || ws.isCommitting() {
			continue
		}
		delete(s.workspaces, id)
		expired = append(expired, id)
	}
	return expired
}

// Cutoff is the last use time of a workspace that is still kept.
func (s *SessionStore) Cutoff() time.Time {
	return s.now().Add(-s.ttl)
}

func (ws *Workspace) isCommitting() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.committing
}
