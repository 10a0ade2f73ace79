package models

import (
	"gorm.io/gorm"
)

type SensoryLine struct {
	gorm.Model
	Name     string        `gorm:"uniqueIndex;not null" json:"name"`
	Position int           `gorm:"not null;default:0" json:"position"`
	Top      []string      `gorm:"serializer:json" json:"top"`
	Heart    []string      `gorm:"serializer:json" json:"heart"`
	Base     []string      `gorm:"serializer:json" json:"base"`
	Emotions []LineEmotion `gorm:"serializer:json" json:"emotions"`
}

// LineEmotion is stored inline with its SensoryLine.
type LineEmotion struct {
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}
