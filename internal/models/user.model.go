package models

type User struct {
	BaseUUIDModel
	DID         string  `gorm:"type:text;not null;uniqueIndex" json:"did"`
	Handle      string  `gorm:"type:text;not null"             json:"handle"`
	DisplayName *string `gorm:"type:text"                      json:"displayName,omitempty"`
	AvatarURL   *string `gorm:"type:text"                      json:"avatarUrl,omitempty"`
}
