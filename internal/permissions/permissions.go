// Package permissions maps backend role names to capabilities. Handlers
// call the predicates; nothing outside this package inspects role strings.
package permissions

// Role is the role claim carried in the bearer token.
type Role string

const (
	RoleAdmin         Role = "Admin"
	RoleDataEntryUser Role = "DataEntryUser"
	RoleObserver      Role = "Observer"
	RoleUser          Role = "User"
	// RoleManager survives in tokens minted before the role was retired.
	// Display-only: it grants nothing.
	RoleManager Role = "Manager"
)

// capabilities is the single source of truth. Roles absent from the table
// grant nothing.
type capabilities struct {
	read        bool
	write       bool
	update      bool
	delete      bool
	manageUsers bool
}

var table = map[Role]capabilities{
	RoleAdmin:         {read: true, write: true, update: true, delete: true, manageUsers: true},
	RoleDataEntryUser: {read: true, write: true, update: true, delete: true},
	RoleObserver:      {read: true},
}

func lookup(role Role) capabilities {
	return table[role]
}

// CanRead reports whether the role may view records.
func CanRead(role Role) bool { return lookup(role).read }

// CanWrite reports whether the role may create records.
func CanWrite(role Role) bool { return lookup(role).write }

// CanUpdate reports whether the role may modify records.
func CanUpdate(role Role) bool { return lookup(role).update }

// CanDelete reports whether the role may remove records.
func CanDelete(role Role) bool { return lookup(role).delete }

// CanManageUsers reports whether the role may administer user accounts.
func CanManageUsers(role Role) bool { return lookup(role).manageUsers }

var displayNames = map[Role]string{
	RoleAdmin:         "Administrator",
	RoleDataEntryUser: "Data Entry User",
	RoleObserver:      "Observer",
	RoleUser:          "User",
	RoleManager:       "Manager",
}

// DisplayName returns a human label for known roles and echoes unknown
// roles unchanged.
func DisplayName(role Role) string {
	if name, ok := displayNames[role]; ok {
		return name
	}
	return string(role)
}
