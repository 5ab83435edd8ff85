// Package model 定义了与数据库、索引交互的数据结构。
package model

import "time"

// ListStatus 是列表项的状态。
type ListStatus string

const (
	ListStatusActive   ListStatus = "ACTIVE"
	ListStatusInactive ListStatus = "INACTIVE"
	ListStatusBanned   ListStatus = "BANNED"
)

// Gender 是列表项的性别。
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// ListItem 对应 list 表。
type ListItem struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Email      string         `gorm:"type:varchar(255);not null;index" json:"email"`
	Name       string         `gorm:"type:varchar(100);not null" json:"name"`
	Status     ListStatus     `gorm:"type:varchar(16);not null;default:ACTIVE" json:"status"`
	Tags       []string       `gorm:"serializer:json" json:"tags"`
	Metadata   map[string]any `gorm:"serializer:json" json:"metadata"`
	Score      int            `gorm:"not null;default:0" json:"score"`
	Balance    string         `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	Gender     *Gender        `gorm:"type:varchar(16)" json:"gender"`
	Phone      *string        `gorm:"type:varchar(32)" json:"phone"`
	Deleted    bool           `gorm:"not null;default:false" json:"deleted"`
	CreateTime time.Time      `gorm:"autoCreateTime" json:"createTime"`
	UpdateTime time.Time      `gorm:"autoUpdateTime" json:"updateTime"`
}

// TableName 指定 ListItem 对应的表名。
func (ListItem) TableName() string {
	return "list"
}
