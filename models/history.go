package models

import "time"

type HistoryAction string

const (
	ActionRegister    HistoryAction = "register"
	ActionBorrow      HistoryAction = "borrow"
	ActionReturn      HistoryAction = "return"
	ActionRepair      HistoryAction = "repair"
	ActionConsumption HistoryAction = "consumption"
)

// SystemActor is recorded as validator when nobody signed off the change.
const SystemActor = "system"

// HistoryEntry is one immutable audit record. ItemID is a weak reference:
// there is no foreign key and nothing cascades.
type HistoryEntry struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	ItemID      string        `gorm:"type:uuid;index:idx_lsb_history_item_created,priority:1;not null" json:"itemId"`
	Action      HistoryAction `gorm:"size:20;not null" json:"action"`
	Person      string        `gorm:"size:200" json:"person"`
	ValidatedBy string        `gorm:"size:200;not null;default:'system'" json:"validatedBy"`
	Quantity    int           `gorm:"not null;default:1;check:chk_lsb_history_quantity,quantity >= 1" json:"quantity"`
	Notes       string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time     `gorm:"index:idx_lsb_history_item_created,priority:2" json:"createdAt"`
}

func (HistoryEntry) TableName() string { return HistoryTable }
