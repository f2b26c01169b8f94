package storage

import (
	"valutatrade/internal/domain"
)

const usersDocument = "users.json"

// UserStore keeps all registered users in a single JSON document.
type UserStore struct {
	docs *DocumentStore
}

// NewUserStore wraps a document store.
func NewUserStore(docs *DocumentStore) *UserStore {
	return &UserStore{docs: docs}
}

// All returns every registered user. An absent document is an empty slice.
func (s *UserStore) All() ([]domain.User, error) {
	var users []domain.User
	if _, err := s.docs.Load(usersDocument, &users); err != nil {
		return nil, &domain.SystemError{Op: "load users", Err: err}
	}
	return users, nil
}

// FindByUsername returns the user with the given username, if any.
func (s *UserStore) FindByUsername(username string) (*domain.User, error) {
	users, err := s.All()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, nil
}

// NextID returns the next sequential user ID.
func (s *UserStore) NextID() (int, error) {
	users, err := s.All()
	if err != nil {
		return 0, err
	}
	return len(users) + 1, nil
}

// Append adds a user and persists the whole document.
func (s *UserStore) Append(user domain.User) error {
	users, err := s.All()
	if err != nil {
		return err
	}
	users = append(users, user)
	if err := s.docs.Save(usersDocument, users); err != nil {
		return &domain.SystemError{Op: "save users", Err: err}
	}
	return nil
}

// Update replaces the stored user with the same ID.
func (s *UserStore) Update(user domain.User) error {
	users, err := s.All()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = user
			if err := s.docs.Save(usersDocument, users); err != nil {
				return &domain.SystemError{Op: "save users", Err: err}
			}
			return nil
		}
	}
	return domain.ErrUserNotFound
}
