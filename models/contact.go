package models

import (
	"errors"
	"strings"
	"time"
)

type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "NEW"
	ContactStatusRead     ContactStatus = "READ"
	ContactStatusAnswered ContactStatus = "ANSWERED"

	DefaultContactSubject = "Ümumi Sorğu"
)

func ParseContactStatus(status string) (ContactStatus, error) {
	switch s := ContactStatus(strings.ToUpper(strings.TrimSpace(status))); s {
	case ContactStatusNew, ContactStatusRead, ContactStatusAnswered:
		return s, nil
	default:
		return "", errors.New("invalid contact status")
	}
}

// Contact is a message left through the storefront contact form.
type Contact struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Name      string        `gorm:"not null" json:"name"`
	Email     string        `gorm:"index;not null" json:"email"`
	Phone     string        `json:"phone"`
	Subject   string        `json:"subject"`
	Message   string        `gorm:"type:text" json:"message"`
	Status    ContactStatus `gorm:"type:VARCHAR(10);default:'NEW';index" json:"status"`
	OrderID   *uint         `json:"orderId,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
