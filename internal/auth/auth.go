// Package auth signs users in with email and password and issues the JWTs
// the API expects as bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gminsights/roadmap-api/internal/logger"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const tokenTTL = 7 * 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("invalid or expired token")
	ErrEmailTaken         = errors.New("email already registered")
	ErrTooManyAttempts    = errors.New("too many sign-in attempts")
)

type Claims struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

type Event string

const (
	SignedIn  Event = "SIGNED_IN"
	SignedOut Event = "SIGNED_OUT"
)

type StateChange struct {
	Event  Event
	UserID uuid.UUID
}

type Service struct {
	profiles store.Table[models.Profile]
	secret   []byte
	log      *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	revoked  map[string]time.Time // token id -> expiry
	limiters map[string]*rate.Limiter
	subs     map[int]func(StateChange)
	nextSub  int
}

func NewService(profiles store.Table[models.Profile], secret string, log *zap.Logger) *Service {
	log = logger.OrNop(log)
	return &Service{
		profiles: profiles,
		secret:   []byte(secret),
		log:      log,
		now:      time.Now,
		revoked:  make(map[string]time.Time),
		limiters: make(map[string]*rate.Limiter),
		subs:     make(map[int]func(StateChange)),
	}
}

// SignUp creates a profile. An empty role means viewer.
func (s *Service) SignUp(ctx context.Context, email, password, name, role string) (*models.Profile, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, &models.ValidationError{Field: "email", Message: "Email and password are required"}
	}
	if len(password) < 6 {
		return nil, &models.ValidationError{Field: "password", Message: "Password must be at least 6 characters"}
	}
	if role != "" && role != models.RoleEditor && role != models.RoleViewer {
		return nil, &models.ValidationError{Field: "role", Message: "Role must be editor or viewer"}
	}

	if existing, err := s.findByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := models.Profile{Email: email, Password: string(hashed), Name: name, Role: role}
	if err := s.profiles.Insert(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SignInWithPassword verifies the credentials and returns a signed token.
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (string, *models.Profile, error) {
	email = normalizeEmail(email)
	if !s.limiter(email).Allow() {
		return "", nil, ErrTooManyAttempts
	}

	p, err := s.findByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if p == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(p.ID, p.Email)
	if err != nil {
		return "", nil, err
	}

	s.log.Info("signed in", zap.Stringer("user", p.ID))
	s.emit(StateChange{Event: SignedIn, UserID: p.ID})
	return token, p, nil
}

func (s *Service) GenerateToken(userID uuid.UUID, email string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken validates the signature, expiry and revocation state.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// GetCurrentUser resolves a token to its profile.
func (s *Service) GetCurrentUser(ctx context.Context, tokenString string) (*models.Profile, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	rows, err := s.profiles.Select(ctx, store.Query{Filter: store.Filter{"id": claims.UserID}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrUnauthenticated
	}
	return &rows[0], nil
}

// SignOut revokes the token until it would have expired anyway.
func (s *Service) SignOut(_ context.Context, tokenString string) error {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return err
	}

	s.mu.Lock()
	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	exp := now.Add(tokenTTL)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	s.revoked[claims.ID] = exp
	s.mu.Unlock()

	s.log.Info("signed out", zap.Stringer("user", claims.UserID))
	s.emit(StateChange{Event: SignedOut, UserID: claims.UserID})
	return nil
}

// OnAuthStateChange registers fn for sign-in and sign-out events. The
// returned function unregisters it.
func (s *Service) OnAuthStateChange(fn func(StateChange)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Service) emit(change StateChange) {
	s.mu.Lock()
	subs := make([]func(StateChange), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
}

// limiter allows a burst of five attempts per email, refilling one every
// twelve seconds.
func (s *Service) limiter(email string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[email]
	if !ok {
		l = rate.NewLimiter(rate.Every(12*time.Second), 5)
		s.limiters[email] = l
	}
	return l
}

func (s *Service) findByEmail(ctx context.Context, email string) (*models.Profile, error) {
	rows, err := s.profiles.Select(ctx, store.Query{Filter: store.Filter{"email": email}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
