package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a buyer contact record. Sales orders may reference one or be
// walk-in (NULL customer).
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"index;not null"`
	Email     *string
	Phone     *string
	Address   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Customer) TableName() string { return "customers" }
