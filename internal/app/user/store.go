package user

import (
	"strings"
	"sync"

	"apitutor/internal/pkg/errs"
)

// Store is an ordered, concurrency-safe collection of users held in process memory.
type Store struct {
	// mu serializes mutations; reads share the lock.
	mu sync.RWMutex

	// users keeps insertion order.
	users []User

	// lastID is the highest id ever handed out or seeded.
	lastID int
}

// NewStore creates a store pre-filled with seed. Ids for later records continue after the highest seed id.
func NewStore(seed ...User) *Store {
	s := &Store{users: make([]User, 0, len(seed))}

	for _, u := range seed {
		s.users = append(s.users, u)
		if u.ID > s.lastID {
			s.lastID = u.ID
		}
	}

	return s
}

// List returns a copy of all records in insertion order.
func (s *Store) List() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, len(s.users))
	copy(out, s.users)
	return out
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.users)
}

// Get returns the record with the given id.
func (s *Store) Get(id int) (User, *errs.CustomError) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return User{}, errs.NewError(errs.ErrUserNotFound)
	}
	return s.users[i], nil
}

// Search returns the records whose name contains substring (case-sensitive), in insertion order.
// The result is never nil.
func (s *Store) Search(substring string) []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, 0)
	for _, u := range s.users {
		if strings.Contains(u.Name, substring) {
			out = append(out, u)
		}
	}
	return out
}

// Create appends a new record and returns it with its assigned id.
func (s *Store) Create(name, email string) (User, *errs.CustomError) {
	if name == "" || email == "" {
		return User{}, errs.NewError(errs.ErrInvalidParams)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	u := User{ID: s.lastID, Name: name, Email: email}
	s.users = append(s.users, u)

	return u, nil
}

// Replace overwrites both fields of an existing record.
func (s *Store) Replace(id int, name, email string) (User, *errs.CustomError) {
	if name == "" || email == "" {
		return User{}, errs.NewError(errs.ErrInvalidParams)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return User{}, errs.NewError(errs.ErrUserNotFound)
	}

	s.users[i].Name = name
	s.users[i].Email = email
	return s.users[i], nil
}

// Patch applies the non-empty fields of p to an existing record.
func (s *Store) Patch(id int, p Patch) (User, *errs.CustomError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return User{}, errs.NewError(errs.ErrUserNotFound)
	}

	if p.Name != nil && *p.Name != "" {
		s.users[i].Name = *p.Name
	}
	if p.Email != nil && *p.Email != "" {
		s.users[i].Email = *p.Email
	}
	return s.users[i], nil
}

// Remove deletes the record with the given id and returns it.
func (s *Store) Remove(id int) (User, *errs.CustomError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return User{}, errs.NewError(errs.ErrUserNotFound)
	}

	removed := s.users[i]
	s.users = append(s.users[:i], s.users[i+1:]...)
	return removed, nil
}

// indexOf returns the slice position of id, or -1. Callers hold mu.
func (s *Store) indexOf(id int) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}
