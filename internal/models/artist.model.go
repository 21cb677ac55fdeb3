package models

import "gorm.io/datatypes"

type Artist struct {
	BaseUUIDModel
	Name       string         `gorm:"type:text;not null" json:"name"`
	PictureURL *string        `gorm:"type:text"          json:"pictureUrl,omitempty"`
	Tags       datatypes.JSON `gorm:"type:jsonb"         json:"tags,omitempty"`

	SHA256 string  `gorm:"column:sha256;type:varchar(64);not null;uniqueIndex" json:"sha256"`
	URI    *string `gorm:"type:text;uniqueIndex" json:"uri,omitempty"`
}
