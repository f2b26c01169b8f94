package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/pbkdf2"

	"valutatrade/internal/domain"
	"valutatrade/internal/infra/storage"
)

const (
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 4

	saltBytes    = 16
	pbkdf2Rounds = 10000
	pbkdf2KeyLen = 32
)

// Service handles registration, login and password changes. Every new user
// gets a portfolio with a zero-balance base-currency wallet.
type Service struct {
	users        *storage.UserStore
	portfolios   *storage.PortfolioStore
	baseCurrency string
	now          func() time.Time
}

// NewService builds the auth service.
func NewService(users *storage.UserStore, portfolios *storage.PortfolioStore, baseCurrency string) *Service {
	return &Service{
		users:        users,
		portfolios:   portfolios,
		baseCurrency: baseCurrency,
		now:          time.Now,
	}
}

// Register creates a user and their initial portfolio.
func (s *Service) Register(username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &domain.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.DuplicateUsernameError{Username: username}
	}

	id, err := s.users.NextID()
	if err != nil {
		return nil, err
	}

	salt, err := generateSalt()
	if err != nil {
		return nil, &domain.SystemError{Op: "generate salt", Err: err}
	}

	user := domain.User{
		ID:           id,
		Username:     username,
		PasswordHash: hashPassword(password, salt),
		Salt:         salt,
		RegisteredAt: s.now(),
	}
	if err := s.users.Append(user); err != nil {
		return nil, err
	}
	if err := s.portfolios.Put(domain.NewPortfolio(id, s.baseCurrency)); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials and returns the authenticated user.
func (s *Service) Login(username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, &domain.ValidationError{Field: "credentials", Reason: "username and password are required"}
	}

	user, err := s.users.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	hash := hashPassword(password, user.Salt)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(user.PasswordHash)) != 1 {
		return nil, domain.ErrWrongPassword
	}
	return user, nil
}

// ChangePassword re-hashes the user's password with a fresh salt and persists it.
func (s *Service) ChangePassword(user *domain.User, newPassword string) error {
	if user == nil {
		return domain.ErrNotAuthorized
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	salt, err := generateSalt()
	if err != nil {
		return &domain.SystemError{Op: "generate salt", Err: err}
	}
	user.Salt = salt
	user.PasswordHash = hashPassword(newPassword, salt)
	return s.users.Update(*user)
}

func validatePassword(password string) error {
	if len(strings.TrimSpace(password)) < MinPasswordLength {
		return &domain.ValidationError{
			Field:  "password",
			Reason: fmt.Sprintf("must be at least %d characters", MinPasswordLength),
		}
	}
	return nil
}

func generateSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Rounds, pbkdf2KeyLen, sha256.New)
	return hex.EncodeToString(key)
}
