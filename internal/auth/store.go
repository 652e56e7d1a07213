package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/finhorizon/horizon/internal/db"
)

var (
	// ErrEmailTaken is returned when signing up with an existing email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrBadCredentials is returned for unknown emails and wrong passwords alike.
	ErrBadCredentials = errors.New("invalid email or password")
)

// Store persists users, profiles, and password reset tokens.
type Store struct {
	db *db.DB
}

// NewStore creates an auth store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// CreateUser registers a new account and seeds its profile. The display
// name defaults to the email local-part.
func (s *Store) CreateUser(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := User{
		ID:        uuid.New().String(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, string(hash), user.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, display_name, updated_at) VALUES (?, ?, ?)`,
		user.ID, LocalPart(email), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("seeding profile: %w", err)
	}

	return &user, nil
}

// Authenticate checks the password for the given email and returns the user.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user User
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email,
	).Scan(&user.ID, &user.Email, &hash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}

	return &user, nil
}

// GetUser retrieves a user by id. Returns nil when absent.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email. Returns nil when absent.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM users WHERE email = ?`, email,
	).Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return &user, nil
}

// GetProfile retrieves the profile for a user. Returns nil when absent.
func (s *Store) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, display_name, avatar_path, currency, language, theme, updated_at
		 FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.DisplayName, &p.AvatarPath, &p.Currency, &p.Language, &p.Theme, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return &p, nil
}

// UpdateProfile overwrites the user-editable profile fields.
func (s *Store) UpdateProfile(ctx context.Context, p Profile) (*Profile, error) {
	p.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET display_name = ?, avatar_path = ?, currency = ?, language = ?, theme = ?, updated_at = ?
		 WHERE user_id = ?`,
		p.DisplayName, p.AvatarPath, p.Currency, p.Language, p.Theme, p.UpdatedAt, p.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("profile %s not found", p.UserID)
	}
	return &p, nil
}

// CreateResetToken issues a password reset token valid for one hour.
func (s *Store) CreateResetToken(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var userID string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, email).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", fmt.Errorf("querying user: %w", err)
	}

	token := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reset_tokens (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, time.Now().UTC().Add(time.Hour),
	)
	if err != nil {
		return "", fmt.Errorf("inserting reset token: %w", err)
	}
	return token, nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *Store) ResetPassword(ctx context.Context, token, password string) error {
	var userID string
	var expires time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM reset_tokens WHERE token = ?`, token,
	).Scan(&userID, &expires)
	if err == sql.ErrNoRows {
		return ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("querying reset token: %w", err)
	}
	if time.Now().UTC().After(expires) {
		return ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, string(hash), userID)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	_, _ = s.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE token = ?`, token)
	return nil
}

// LocalPart returns everything before the @ in an email address. Used as
// the default display name.
func LocalPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
