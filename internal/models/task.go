package models

import "time"

// Task is the authoritative row for a single task. OwnerID is a numeric
// owner reference, not a foreign-key relation: the display identity is
// reconstituted at read time via the identity gateway, so the row stays
// valid even when the owner is the anonymous sentinel or no longer exists.
type Task struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	OwnerID   int64     `gorm:"index;not null;default:-1" json:"owner_id"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}
