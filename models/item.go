// models/item.go
package models

import "time"

const ItemTable = "lsb_items"
const HistoryTable = "lsb_history"
const CounterTable = "lsb_counters"

type ItemStatus string

const (
	ItemStatusNew       ItemStatus = "new"
	ItemStatusAvailable ItemStatus = "available"
	ItemStatusBorrowed  ItemStatus = "borrowed"
	ItemStatusRepair    ItemStatus = "repair"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusNew, ItemStatusAvailable, ItemStatusBorrowed, ItemStatusRepair:
		return true
	}
	return false
}

// Item 是一件可扫描的资产：唯一工具（按 status 占用）或耗材（按 stock 扣减）
type Item struct {
	ID            string     `gorm:"type:uuid;primaryKey" json:"id"`
	QRCode        string     `gorm:"column:qr_code;size:64;uniqueIndex;not null" json:"qrCode"`
	Name          string     `gorm:"size:200;not null;index" json:"name"`
	Category      string     `gorm:"size:120" json:"category"`
	Description   string     `gorm:"type:text" json:"description"`
	Status        ItemStatus `gorm:"size:20;not null;default:'available'" json:"status"`
	CurrentHolder *string    `gorm:"size:200" json:"currentHolder"`
	LoanDate      *time.Time `json:"loanDate"`
	RegisteredBy  string     `gorm:"size:200" json:"registeredBy"`
	IsConsumable  bool       `gorm:"not null;default:false" json:"isConsumable"`
	Stock         int        `gorm:"not null;default:0;check:chk_lsb_items_stock,stock >= 0" json:"stock"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (Item) TableName() string { return ItemTable }

// Available 只对唯一工具有意义；耗材看 Stock
func (it *Item) Available() bool {
	if it.IsConsumable {
		return it.Stock > 0
	}
	return it.Status == ItemStatusNew || it.Status == ItemStatusAvailable
}

// Counter 单行计数器，用于原子分配物品编号
type Counter struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value int64  `gorm:"not null;default:0"`
}

func (Counter) TableName() string { return CounterTable }
