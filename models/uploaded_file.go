package models

import "time"

// UploadedFile records locally stored complaint images so orphaned uploads
// (never attached to a complaint) can be swept after they expire.
type UploadedFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FilePath  string    `gorm:"size:1024;not null" json:"file_path"`
	URL       string    `gorm:"size:1024;not null" json:"url"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Attached  bool      `gorm:"default:false" json:"attached"`
	ExpireAt  time.Time `gorm:"index" json:"expire_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
