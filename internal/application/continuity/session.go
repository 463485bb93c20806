package continuity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/Continuity-Map/internal/application/reporting"
	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
	"github.com/turtacn/Continuity-Map/internal/domain/zone"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

// Session is the state of one operator: the current dataset, filters, zone,
// report and emergency location.  Every field is replaced wholesale; nothing
// is shared between sessions.
type Session struct {
	mu sync.Mutex

	id        string
	createdAt time.Time
	updatedAt time.Time

	digest   string
	dataset  *personnel.CleanDataset
	domain   personnel.DomainValues
	criteria personnel.Criteria
	zone     *zone.Zone
	report   *reporting.Report
	location *reporting.EmergencyLocation
}

// SessionInfo is a read-only snapshot of a Session.
type SessionInfo struct {
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	HasDataset  bool               `json:"has_dataset"`
	Records     int                `json:"records"`
	Criteria    personnel.Criteria `json:"criteria"`
	ZoneKind    string             `json:"zone_kind,omitempty"`
	ReportID    string             `json:"report_id,omitempty"`
	HasLocation bool               `json:"has_location"`
}

func newSession(now time.Time) *Session {
	return &Session{id: uuid.NewString(), createdAt: now, updatedAt: now}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// info must be called with s.mu held.
func (s *Session) info() *SessionInfo {
	out := &SessionInfo{
		ID:          s.id,
		CreatedAt:   s.createdAt,
		UpdatedAt:   s.updatedAt,
		HasDataset:  s.dataset != nil,
		Criteria:    s.criteria,
		HasLocation: s.location != nil,
	}
	if s.dataset != nil {
		out.Records = len(s.dataset.Records)
	}
	if s.zone != nil {
		out.ZoneKind = string(s.zone.Kind())
	}
	if s.report != nil {
		out.ReportID = s.report.ID()
	}
	return out
}

// filterState must be called with s.mu held.
func (s *Session) filterState() *FilterState {
	return &FilterState{
		Criteria: s.criteria,
		Domain:   s.domain,
		Matched:  len(personnel.Filter(s.dataset.Records, s.criteria)),
		Total:    len(s.dataset.Records),
	}
}

// SessionStore holds live sessions keyed by id.
type SessionStore interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Len() int
}

// MemorySessionStore is an in-process SessionStore.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemorySessionStore returns an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session), now: time.Now}
}

func (m *MemorySessionStore) Create(_ context.Context) (*Session, error) {
	s := newSession(m.now())
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s, nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session not found").WithDetail(id)
	}
	return s, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return errors.New(errors.ErrCodeSessionNotFound, "session not found").WithDetail(id)
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

//Personal.AI order the ending
