package models

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     Role
		minimum  Role
		expected bool
	}{
		{RoleSuperAdmin, RoleSuperAdmin, true},
		{RoleSuperAdmin, RoleWarehouseKeeper, true},
		{RoleSuperAdmin, RoleWorker, true},
		{RoleWarehouseKeeper, RoleSuperAdmin, false},
		{RoleWarehouseKeeper, RoleWarehouseKeeper, true},
		{RoleWarehouseKeeper, RoleWorker, true},
		{RoleWorker, RoleSuperAdmin, false},
		{RoleWorker, RoleWarehouseKeeper, false},
		{RoleWorker, RoleWorker, true},
		// Unknown roles fail closed.
		{"unknown", RoleWorker, false},
		{RoleSuperAdmin, "unknown", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestAttendanceFlip(t *testing.T) {
	var none AttendanceAction
	if got := none.Flip(); got != AttendanceIn {
		t.Errorf("empty.Flip() = %q, want IN", got)
	}
	if got := AttendanceIn.Flip(); got != AttendanceOut {
		t.Errorf("IN.Flip() = %q, want OUT", got)
	}
	if got := AttendanceOut.Flip(); got != AttendanceIn {
		t.Errorf("OUT.Flip() = %q, want IN", got)
	}

	w := Worker{}
	if w.CurrentAction() != AttendanceOut {
		t.Errorf("worker without attendance should be OUT, got %q", w.CurrentAction())
	}
}
