package auth

import (
	"sync"

	"github.com/ElStudioBarberia/course-service/internal/models"
)

// Session is the process-wide view of "who is logged in". Loading is true
// until the first auth event has been handled.
type Session struct {
	User    *models.AppUser
	Loading bool
}

// Store is the single holder of session state. Both the listener and the
// credential operations write through it; every write takes a monotonic
// generation ticket so a resolution that started earlier but finished later
// can never clobber a newer state.
type Store struct {
	mu        sync.Mutex
	session   Session
	nextGen   uint64
	applied   uint64
	subs      map[int]chan Session
	nextSubID int
}

func NewStore() *Store {
	return &Store{
		session: Session{Loading: true},
		subs:    make(map[int]chan Session),
	}
}

// Current returns a snapshot of the session state.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Session{User: s.session.User.Clone(), Loading: s.session.Loading}
}

// Begin issues a generation ticket. Tickets must be taken in event order;
// the resolution for a ticket may complete at any later time.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGen++
	return s.nextGen
}

// Publish applies the resolved user for the given generation. Returns false
// when a newer generation has already been applied, in which case the write
// is discarded.
func (s *Store) Publish(gen uint64, user *models.AppUser) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen <= s.applied {
		return false
	}
	s.applied = gen
	s.session = Session{User: user, Loading: false}
	s.notify()
	return true
}

// MarkHandled clears the loading flag without touching the user. Used when
// an event's profile resolution failed and the session must stay whatever it
// was.
func (s *Store) MarkHandled(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen <= s.applied {
		return
	}
	s.applied = gen
	if s.session.Loading {
		s.session.Loading = false
		s.notify()
	}
}

// ProfilePatch is a client-side-only shallow merge into the current user.
type ProfilePatch struct {
	Nombre     *string
	Email      *string
	FotoPerfil *string
	Habilitado *bool
	Role       *models.Role
}

// Patch merges the given fields into the current user without any remote
// call. No-op when there is no authenticated user.
func (s *Store) Patch(patch ProfilePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.User == nil {
		return
	}
	user := s.session.User.Clone()
	if patch.Nombre != nil {
		user.Nombre = *patch.Nombre
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FotoPerfil != nil {
		user.FotoPerfil = *patch.FotoPerfil
	}
	if patch.Habilitado != nil {
		user.Habilitado = *patch.Habilitado
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	s.session.User = user
	s.notify()
}

// Subscribe returns a channel receiving session snapshots after every state
// change, and an unsubscribe func.
func (s *Store) Subscribe() (<-chan Session, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Session, 16)
	s.subs[id] = ch

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// notify must be called with s.mu held.
func (s *Store) notify() {
	snapshot := Session{User: s.session.User.Clone(), Loading: s.session.Loading}
	for _, ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
