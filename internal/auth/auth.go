// Package auth provides account sign-up/sign-in and bearer-token sessions
// over the document store. It intentionally stays thin: salted hashes at
// rest, opaque uuid tokens, no policy enforcement.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"allswell/internal/apperr"
	"allswell/internal/docstore"
	"allswell/internal/model"
)

const usersCollection = "users"

// Identity is the signed-in user as seen by the rest of the system.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Credentials are the sign-up / sign-in input.
type Credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required, validation.Length(6, 0)),
	)
}

// Manager owns accounts and live session tokens. State-change listeners fire
// with the identity on sign-in and nil on sign-out.
type Manager struct {
	store docstore.Store
	log   *slog.Logger

	mu        sync.Mutex
	sessions  map[string]Identity // token -> identity
	listeners []func(*Identity)
}

func NewManager(store docstore.Store, log *slog.Logger) *Manager {
	return &Manager{store: store, log: log, sessions: make(map[string]Identity)}
}

// OnAuthStateChange registers a callback fired on every sign-in and sign-out.
func (m *Manager) OnAuthStateChange(fn func(*Identity)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// SignUp creates an account and opens a session for it.
func (m *Manager) SignUp(ctx context.Context, creds Credentials) (*Identity, string, error) {
	if err := creds.Validate(); err != nil {
		return nil, "", err
	}
	email := strings.ToLower(strings.TrimSpace(creds.Email))

	if existing, _ := m.findByEmail(ctx, email); existing != nil {
		return nil, "", apperr.ErrAlreadyExists
	}

	salt := uuid.NewString()
	profile := model.UserProfile{
		Email:        email,
		DisplayName:  creds.DisplayName,
		PasswordHash: hashPassword(salt, creds.Password),
		Salt:         salt,
		CreatedAt:    time.Now(),
	}

	uid := uuid.NewString()
	if err := m.store.Set(ctx, usersCollection, uid, profile, false); err != nil {
		return nil, "", fmt.Errorf("create account: %w", err)
	}

	identity := Identity{UID: uid, Email: email, DisplayName: creds.DisplayName}
	token := m.openSession(identity)
	return &identity, token, nil
}

// SignIn verifies credentials and opens a session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Identity, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	found, err := m.findByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if found == nil || !verifyPassword(found.profile, password) {
		return nil, "", apperr.ErrUnauthorized
	}

	identity := Identity{UID: found.uid, Email: email, DisplayName: found.profile.DisplayName}
	token := m.openSession(identity)
	return &identity, token, nil
}

// SignOut closes the token's session.
func (m *Manager) SignOut(token string) {
	m.mu.Lock()
	_, ok := m.sessions[token]
	delete(m.sessions, token)
	listeners := append([]func(*Identity){}, m.listeners...)
	m.mu.Unlock()

	if ok {
		for _, fn := range listeners {
			fn(nil)
		}
	}
}

// CurrentUser resolves a session token to its identity.
func (m *Manager) CurrentUser(token string) (*Identity, error) {
	m.mu.Lock()
	identity, ok := m.sessions[token]
	m.mu.Unlock()
	if !ok {
		return nil, apperr.ErrUnauthorized
	}
	return &identity, nil
}

// ChangePassword replaces the password after verifying the current one.
func (m *Manager) ChangePassword(ctx context.Context, token, current, next string) error {
	identity, err := m.CurrentUser(token)
	if err != nil {
		return err
	}
	if err := validation.Validate(next, validation.Required, validation.Length(6, 0)); err != nil {
		return err
	}

	doc, err := m.store.Get(ctx, usersCollection, identity.UID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	var profile model.UserProfile
	if err := json.Unmarshal(doc.Data, &profile); err != nil {
		return fmt.Errorf("decode profile: %w", err)
	}
	if !verifyPassword(profile, current) {
		return apperr.ErrUnauthorized
	}

	salt := uuid.NewString()
	return m.store.Set(ctx, usersCollection, identity.UID, map[string]any{
		"salt":         salt,
		"passwordHash": hashPassword(salt, next),
	}, true)
}

func (m *Manager) openSession(identity Identity) string {
	token := uuid.NewString()
	m.mu.Lock()
	m.sessions[token] = identity
	listeners := append([]func(*Identity){}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(&identity)
	}
	return token
}

type foundUser struct {
	uid     string
	profile model.UserProfile
}

func (m *Manager) findByEmail(ctx context.Context, email string) (*foundUser, error) {
	docs, err := m.store.GetAll(ctx, usersCollection, "")
	if err != nil {
		return nil, fmt.Errorf("scan accounts: %w", err)
	}
	for _, doc := range docs {
		var profile model.UserProfile
		if err := json.Unmarshal(doc.Data, &profile); err != nil {
			continue
		}
		if profile.Email == email {
			return &foundUser{uid: doc.ID, profile: profile}, nil
		}
	}
	return nil, nil
}

func hashPassword(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + ":" + password))
	return hex.EncodeToString(sum[:])
}

func verifyPassword(profile model.UserProfile, password string) bool {
	expected := hashPassword(profile.Salt, password)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(profile.PasswordHash)) == 1
}
