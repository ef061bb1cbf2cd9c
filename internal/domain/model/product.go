package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ココランバー（ココナッツ材）の在庫ログ。サイズと長さで価格が決まる。
type Product struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Size           string          `gorm:"type:varchar(50);not null" json:"size"`
	Length         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"length"`
	Stock          int64           `gorm:"not null;default:0" json:"stock"`
	QualityGrade   string          `gorm:"type:varchar(20)" json:"quality_grade,omitempty"`
	ProductPicture string          `gorm:"type:varchar(255)" json:"product_picture,omitempty"`
	StaffID        int64           `gorm:"not null;index" json:"staff_id"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "cocolumber_logs"
}
