package web

// LoginRequest payload for the login form or JSON body.
type LoginRequest struct {
	Identifier string `json:"identifier" form:"identifier"`
	Password   string `json:"password" form:"password"`
}

// UserResponse is the identity slice exposed to views.
type UserResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	RoleDisplay string `json:"role_display"`
}

// CapabilitiesResponse tells views what the current role may do.
type CapabilitiesResponse struct {
	Read        bool `json:"read"`
	Write       bool `json:"write"`
	Update      bool `json:"update"`
	Delete      bool `json:"delete"`
	ManageUsers bool `json:"manage_users"`
}

// SessionResponse is the snapshot consumed by the countdown banner and the
// navigation chrome.
type SessionResponse struct {
	Authenticated    bool                  `json:"authenticated"`
	ExpiringSoon     bool                  `json:"expiring_soon"`
	MinutesRemaining int                   `json:"minutes_remaining"`
	User             *UserResponse         `json:"user,omitempty"`
	Capabilities     *CapabilitiesResponse `json:"capabilities,omitempty"`
}
