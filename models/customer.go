package models

import (
	"time"
)

type Customer struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	FullName             string    `gorm:"type:varchar(255);not null" json:"fullName"`
	Email                string    `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	EncryptedPhoneNumber string    `gorm:"type:varchar(128);index" json:"-"`
	Status               string    `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
	CreatedAt            time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt            time.Time `gorm:"not null" json:"updatedAt"`
}
