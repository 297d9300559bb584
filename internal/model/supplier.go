package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is a vendor contact record referenced by purchase orders.
type Supplier struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"uniqueIndex;not null"`
	Address      *string
	Phone        *string
	Email        *string
	PaymentTerms *string
	Active       bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Supplier) TableName() string { return "suppliers" }
