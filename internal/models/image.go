package models

import "time"

// Image is the metadata row for an uploaded binary asset. The bytes live in
// the blob store under Key; ThumbKey addresses the webp thumbnail variant.
type Image struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	Key         string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ThumbKey    string    `gorm:"size:64" json:"-"`
	Filename    string    `gorm:"size:255" json:"filename"`
	ContentType string    `gorm:"size:64;not null" json:"content_type"`
	SizeBytes   int64     `gorm:"not null" json:"size_bytes"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	CreatedAt   time.Time `json:"created_at"`
}

// BlobKeys returns every blob key the image occupies.
func (i *Image) BlobKeys() []string {
	keys := []string{i.Key}
	if i.ThumbKey != "" {
		keys = append(keys, i.ThumbKey)
	}
	return keys
}
