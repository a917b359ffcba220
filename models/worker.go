package models

import (
	"time"
)

const WorkerTable = "lsb_workers"
const AttendanceTable = "lsb_attendance"

type Role string

const (
	RoleSuperAdmin      Role = "SuperAdmin"
	RoleWarehouseKeeper Role = "Warehouse-keeper"
	RoleWorker          Role = "Worker"
)

var roleLevels = map[Role]int{
	RoleSuperAdmin:      3,
	RoleWarehouseKeeper: 2,
	RoleWorker:          1,
}

func (r Role) Valid() bool { _, ok := roleLevels[r]; return ok }

// RoleAtLeast checks if role meets or exceeds the minimum required role.
// Unknown roles fail closed.
func RoleAtLeast(role, minimum Role) bool {
	have, ok := roleLevels[role]
	if !ok {
		return false
	}
	need, ok := roleLevels[minimum]
	if !ok {
		return false
	}
	return have >= need
}

type AttendanceAction string

const (
	AttendanceIn  AttendanceAction = "IN"
	AttendanceOut AttendanceAction = "OUT"
)

// Flip returns the action that must follow a. An empty action counts as OUT.
func (a AttendanceAction) Flip() AttendanceAction {
	if a == AttendanceIn {
		return AttendanceOut
	}
	return AttendanceIn
}

// Worker 人员档案；PIN 只存 bcrypt 哈希，永不序列化
type Worker struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	QRCode   string `gorm:"column:qr_code;size:64;uniqueIndex;not null" json:"qrCode"`
	Name     string `gorm:"size:200;not null;index" json:"name"`
	Position string `gorm:"size:120" json:"position"`
	PIN      string `gorm:"column:pin_hash;size:100" json:"-"`
	Role     Role   `gorm:"size:32;not null;default:'Worker'" json:"role"`

	// 考勤游标：条目数 + 最后动作，条件更新靠它防并发
	AttendanceSeq int               `gorm:"not null;default:0" json:"attendanceCount"`
	LastAction    *AttendanceAction `gorm:"size:3" json:"lastAction,omitempty"`

	LastSeenAt *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	Attendance []AttendanceEntry `gorm:"foreignKey:WorkerID" json:"attendance,omitempty"`
}

func (Worker) TableName() string { return WorkerTable }

// CurrentAction is the last recorded attendance action, OUT when none.
func (w *Worker) CurrentAction() AttendanceAction {
	if w.LastAction == nil {
		return AttendanceOut
	}
	return *w.LastAction
}

type AttendanceEntry struct {
	ID        uint             `gorm:"primaryKey" json:"-"`
	WorkerID  string           `gorm:"type:uuid;not null;uniqueIndex:idx_lsb_attendance_worker_seq,priority:1" json:"-"`
	Seq       int              `gorm:"not null;uniqueIndex:idx_lsb_attendance_worker_seq,priority:2" json:"seq"`
	Action    AttendanceAction `gorm:"size:3;not null" json:"action"`
	Timestamp time.Time        `gorm:"not null" json:"timestamp"`
	Notes     string           `gorm:"size:255" json:"notes,omitempty"`
}

func (AttendanceEntry) TableName() string { return AttendanceTable }
