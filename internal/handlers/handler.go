package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/gminsights/roadmap-api/internal/auth"
	"github.com/gminsights/roadmap-api/internal/catalog"
	"github.com/gminsights/roadmap-api/internal/events"
	"github.com/gminsights/roadmap-api/internal/logger"
	"github.com/gminsights/roadmap-api/internal/middleware"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/prefs"
	"github.com/gminsights/roadmap-api/internal/reconciler"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Deps struct {
	Store       *store.Store
	Auth        *auth.Service
	Goals       *catalog.Catalog
	Hub         *events.Hub
	Publisher   events.Publisher
	Preferences prefs.Store
	Logger      *zap.Logger
	// LegacyNotesOnLoad is passed through to every workspace.
	LegacyNotesOnLoad bool
}

// Handler serves the API. Each signed-in user gets a workspace: a
// reconciler holding that user's view of the project tree.
type Handler struct {
	store        *store.Store
	auth         *auth.Service
	goals        *catalog.Catalog
	hub          *events.Hub
	pub          events.Publisher
	prefs        prefs.Store
	log          *zap.Logger
	legacyOnLoad bool

	mu          sync.Mutex
	workspaces  map[uuid.UUID]*reconciler.Reconciler
	unsubscribe func()
}

func New(d Deps) *Handler {
	log := d.Logger
	log = logger.OrNop(log)
	goals := d.Goals
	if goals == nil {
		goals = catalog.Default()
	}
	hub := d.Hub
	if hub == nil {
		hub = events.NewHub(log)
	}
	pub := d.Publisher
	if pub == nil {
		pub = hub
	}

	h := &Handler{
		store:        d.Store,
		auth:         d.Auth,
		goals:        goals,
		hub:          hub,
		pub:          pub,
		prefs:        d.Preferences,
		log:          log,
		legacyOnLoad: d.LegacyNotesOnLoad,
		workspaces:   make(map[uuid.UUID]*reconciler.Reconciler),
	}
	h.unsubscribe = d.Auth.OnAuthStateChange(func(change auth.StateChange) {
		if change.Event == auth.SignedOut {
			h.dropWorkspace(change.UserID)
		}
	})
	return h
}

// Close stops listening for auth changes.
func (h *Handler) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
}

// Hub returns the websocket hub events are delivered through.
func (h *Handler) Hub() *events.Hub {
	return h.hub
}

// workspace returns the caller's reconciler, loading it on first use.
func (h *Handler) workspace(c *fiber.Ctx) (*reconciler.Reconciler, error) {
	rec, err := h.reconcilerFor(c)
	if err != nil {
		return nil, err
	}
	if !rec.Loaded() {
		if _, err := rec.LoadAll(c.UserContext()); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// reconcilerFor returns the caller's reconciler without loading it.
func (h *Handler) reconcilerFor(c *fiber.Ctx) (*reconciler.Reconciler, error) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return nil, auth.ErrUnauthenticated
	}

	h.mu.Lock()
	rec, ok := h.workspaces[userID]
	if !ok {
		rec = reconciler.New(h.store, reconciler.Session{UserID: userID, Email: middleware.GetEmail(c)}, reconciler.Options{
			Preferences:       h.prefs,
			Publisher:         h.pub,
			Logger:            h.log,
			Goals:             h.goals,
			LegacyNotesOnLoad: h.legacyOnLoad,
		})
		h.workspaces[userID] = rec
	}
	h.mu.Unlock()
	return rec, nil
}

func (h *Handler) dropWorkspace(userID uuid.UUID) {
	h.mu.Lock()
	delete(h.workspaces, userID)
	h.mu.Unlock()
	h.log.Debug("workspace dropped", zap.Stringer("user", userID))
}

func (h *Handler) workspaceCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.workspaces)
}

// retryStale reloads the workspace once when fn cannot find its target;
// another user may have created it since the last load.
func retryStale[T any](ctx context.Context, rec *reconciler.Reconciler, fn func() (T, error)) (T, error) {
	v, err := fn()
	if !errors.Is(err, reconciler.ErrNotFound) {
		return v, err
	}
	if _, lerr := rec.LoadAll(ctx); lerr != nil {
		return v, lerr
	}
	return fn()
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ve.Message,
			"field": ve.Field,
		})
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, auth.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already registered"})
	case errors.Is(err, auth.ErrTooManyAttempts):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts, try again later"})
	case errors.Is(err, reconciler.ErrPermission):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not have permission to make changes"})
	case errors.Is(err, reconciler.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case reconciler.IsRemote(err):
		h.log.Error("store operation failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to reach the data store"})
	default:
		h.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, &models.ValidationError{Field: name, Message: "Invalid " + name}
	}
	return id, nil
}
