package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/anurag9179/smartcashbook.client/internal/permissions"
	"github.com/anurag9179/smartcashbook.client/internal/session"
	apperrors "github.com/anurag9179/smartcashbook.client/pkg/util"
)

const stateKey = "session_state"

// Guard gates protected views on a live session snapshot. Every request is
// re-evaluated, so a forced logout evicts the user on their next navigation.
type Guard struct {
	store  *session.Store
	logger *zap.Logger
}

// NewGuard constructs the route guard.
func NewGuard(store *session.Store, logger *zap.Logger) *Guard {
	return &Guard{store: store, logger: logger.Named("guard")}
}

// RequireSession passes authenticated requests through with the snapshot in
// locals. Browser navigations get 303 See Other to /login, which replaces
// the current history entry rather than stacking one; API callers get 401.
func (g *Guard) RequireSession(c *fiber.Ctx) error {
	snap := g.store.Snapshot()
	if !snap.Authenticated {
		if wantsJSON(c) {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	c.Locals(stateKey, snap)
	return c.Next()
}

// RequireCapability gates a route on a permission predicate. Must run after
// RequireSession. Unknown roles fail closed.
func (g *Guard) RequireCapability(allowed func(permissions.Role) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, ok := StateFromContext(c)
		if !ok || snap.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !allowed(snap.User.Role) {
			g.logger.Debug("capability denied",
				zap.String("username", snap.User.Username),
				zap.String("path", c.Path()))
			return apperrors.NewForbidden("insufficient permissions")
		}
		return c.Next()
	}
}

// StateFromContext retrieves the snapshot stashed by RequireSession.
func StateFromContext(c *fiber.Ctx) (session.State, bool) {
	snap, ok := c.Locals(stateKey).(session.State)
	return snap, ok
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}
