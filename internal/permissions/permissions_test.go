package permissions

import "testing"

func TestCapabilityTable(t *testing.T) {
	cases := []struct {
		role        Role
		read        bool
		write       bool
		update      bool
		delete      bool
		manageUsers bool
	}{
		{RoleAdmin, true, true, true, true, true},
		{RoleDataEntryUser, true, true, true, true, false},
		{RoleObserver, true, false, false, false, false},
		{RoleUser, false, false, false, false, false},
		{RoleManager, false, false, false, false, false},
		{Role("SuperDuperAdmin"), false, false, false, false, false},
		{Role(""), false, false, false, false, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			if got := CanRead(tc.role); got != tc.read {
				t.Errorf("CanRead(%q) = %v, want %v", tc.role, got, tc.read)
			}
			if got := CanWrite(tc.role); got != tc.write {
				t.Errorf("CanWrite(%q) = %v, want %v", tc.role, got, tc.write)
			}
			if got := CanUpdate(tc.role); got != tc.update {
				t.Errorf("CanUpdate(%q) = %v, want %v", tc.role, got, tc.update)
			}
			if got := CanDelete(tc.role); got != tc.delete {
				t.Errorf("CanDelete(%q) = %v, want %v", tc.role, got, tc.delete)
			}
			if got := CanManageUsers(tc.role); got != tc.manageUsers {
				t.Errorf("CanManageUsers(%q) = %v, want %v", tc.role, got, tc.manageUsers)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		role Role
		want string
	}{
		{RoleAdmin, "Administrator"},
		{RoleDataEntryUser, "Data Entry User"},
		{RoleObserver, "Observer"},
		{RoleManager, "Manager"},
		{Role("Auditor"), "Auditor"},
	}
	for _, tc := range cases {
		if got := DisplayName(tc.role); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.role, got, tc.want)
		}
	}
}
