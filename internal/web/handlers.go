package web

import (
	"html"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/anurag9179/smartcashbook.client/internal/permissions"
	"github.com/anurag9179/smartcashbook.client/internal/session"
	apperrors "github.com/anurag9179/smartcashbook.client/pkg/util"
)

// Handlers carries the HTTP surface of the front-end. View bodies are thin
// stubs; the interesting behavior is session gating.
type Handlers struct {
	store   *session.Store
	logger  *zap.Logger
	name    string
	version string
}

// NewHandlers constructs the handler set.
func NewHandlers(store *session.Store, logger *zap.Logger, name, version string) *Handlers {
	return &Handlers{store: store, logger: logger.Named("web"), name: name, version: version}
}

// Health reports process liveness.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "name": h.name, "version": h.version})
}

// LoginPage serves the login form shell. Already-authenticated visitors go
// straight to the dashboard.
func (h *Handlers) LoginPage(c *fiber.Ctx) error {
	if h.store.Snapshot().Authenticated {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	page := `<!doctype html><title>SmartCashbook – Sign in</title>
<form method="post" action="/login">
<input name="identifier" placeholder="Username or email" autofocus>
<input name="password" type="password" placeholder="Password">
<button type="submit">Sign in</button>
</form>`
	if msg := c.Query("error"); msg != "" {
		page += "<p>" + html.EscapeString(msg) + "</p>"
	}
	return c.SendString(page)
}

// Login authenticates against the backend via the session store. Failures
// never change session state.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("could not parse login request", nil)
	}
	if req.Identifier == "" || req.Password == "" {
		return apperrors.NewValidationError("identifier and password are required", nil)
	}

	res := h.store.Login(c.UserContext(), req.Identifier, req.Password)
	if !res.OK {
		if wantsJSON(c) {
			return apperrors.NewUnauthorized(res.Err)
		}
		return c.Redirect("/login?error="+url.QueryEscape(res.Err), fiber.StatusSeeOther)
	}

	if wantsJSON(c) {
		return c.JSON(h.sessionResponse())
	}
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

// Logout ends the session. Idempotent by construction.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	h.store.Logout()
	if wantsJSON(c) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// Session returns the live snapshot for the countdown banner.
func (h *Handlers) Session(c *fiber.Ctx) error {
	return c.JSON(h.sessionResponse())
}

// RefreshSession asks the backend for a fresh token.
func (h *Handlers) RefreshSession(c *fiber.Ctx) error {
	res := h.store.RefreshToken(c.UserContext())
	if !res.OK {
		return apperrors.NewUnauthorized(res.Err)
	}
	return c.JSON(h.sessionResponse())
}

// Dashboard is the landing view stub.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	snap, _ := StateFromContext(c)
	return c.JSON(fiber.Map{
		"view": "dashboard",
		"user": userResponse(snap.User),
	})
}

// Transactions is the transactions view stub.
func (h *Handlers) Transactions(c *fiber.Ctx) error {
	snap, _ := StateFromContext(c)
	caps := capabilitiesResponse(snap.User)
	return c.JSON(fiber.Map{
		"view":         "transactions",
		"capabilities": caps,
	})
}

// Users is the user-management view stub, reachable only with the
// manage-users capability.
func (h *Handlers) Users(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"view": "users"})
}

func (h *Handlers) sessionResponse() SessionResponse {
	snap := h.store.Snapshot()
	resp := SessionResponse{
		Authenticated:    snap.Authenticated,
		ExpiringSoon:     snap.ExpiringSoon,
		MinutesRemaining: snap.MinutesRemaining,
	}
	if snap.User != nil {
		resp.User = userResponse(snap.User)
		resp.Capabilities = capabilitiesResponse(snap.User)
	}
	return resp
}

func userResponse(u *session.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        string(u.Role),
		RoleDisplay: permissions.DisplayName(u.Role),
	}
}

func capabilitiesResponse(u *session.User) *CapabilitiesResponse {
	if u == nil {
		return nil
	}
	return &CapabilitiesResponse{
		Read:        permissions.CanRead(u.Role),
		Write:       permissions.CanWrite(u.Role),
		Update:      permissions.CanUpdate(u.Role),
		Delete:      permissions.CanDelete(u.Role),
		ManageUsers: permissions.CanManageUsers(u.Role),
	}
}
