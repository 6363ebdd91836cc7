package models

import (
	"time"

	"gorm.io/datatypes"
)

// PluginSetting is the durable configuration of one payment plugin.
type PluginSetting struct {
	ID        uint           `gorm:"primarykey"`
	UUID      string         `gorm:"uniqueIndex;type:varchar(36);not null"`
	Platform  string         `gorm:"uniqueIndex;type:varchar(32);not null"`               // e.g., "alipay"
	Name      string         `gorm:"type:varchar(100);not null;default:'Payment Method'"` // Display name
	Debug     bool           `gorm:"not null"`                                            // sandbox endpoints when true
	Enable    bool           `gorm:"not null"`
	Config    datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type DebugChangeSource string

const (
	DebugChangeSourceAdmin  DebugChangeSource = "admin"
	DebugChangeSourceBulk   DebugChangeSource = "bulk"
	DebugChangeSourceCLI    DebugChangeSource = "cli"
	DebugChangeSourceRemote DebugChangeSource = "remote"
)

// DebugChange records one switch of a plugin between sandbox and production.
type DebugChange struct {
	ID        uint              `gorm:"primarykey"`
	CreatedAt time.Time         `gorm:"precision:3;index"`
	Platform  string            `gorm:"type:varchar(32);index;not null"`
	Debug     bool              `gorm:"not null"`
	Operator  string            `gorm:"type:varchar(100)"` // Admin subject or 'system'
	Source    DebugChangeSource `gorm:"type:varchar(20);default:'admin'"`
	IPAddress string            `gorm:"type:varchar(50)"`
}
