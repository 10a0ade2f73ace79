package models

import (
	"gorm.io/gorm"
)

// Oil is a vegetable oil of the reference catalogue. Environmental fields are
// nullable: a nil ImpactCoefficient means the oil has no factor record, and
// a footprint exists only when both CO2PerKg and WaterLitresPerKg are set.
type Oil struct {
	gorm.Model
	Name              string           `gorm:"uniqueIndex;not null" json:"name"`
	Origin            string           `json:"origin"`
	Certification     string           `json:"certification"`
	ImpactCoefficient *float64         `json:"impact_coefficient,omitempty"`
	CO2PerKg          *float64         `json:"co2_per_kg,omitempty"`
	WaterLitresPerKg  *float64         `json:"water_litres_per_kg,omitempty"`
	SensoryNotes      []string         `gorm:"serializer:json" json:"sensory_notes"`
	SensoryEmotions   []string         `gorm:"serializer:json" json:"sensory_emotions"`
	Aliases           []OilAlias       `gorm:"foreignKey:OilID" json:"aliases"`
	FattyAcids        []FattyAcidShare `gorm:"foreignKey:OilID" json:"fatty_acids"`
}

// OilAlias holds an alternative name, such as a legacy label, for an Oil.
type OilAlias struct {
	gorm.Model
	Alias string `gorm:"uniqueIndex;not null" json:"alias"`
	OilID uint   `gorm:"index;not null" json:"oil_id"`
}

// FattyAcidShare is the percentage of one fatty acid in an oil.
type FattyAcidShare struct {
	gorm.Model
	OilID uint    `gorm:"uniqueIndex:idx_oil_acid;not null" json:"oil_id"`
	Acid  string  `gorm:"uniqueIndex:idx_oil_acid;size:16;not null" json:"acid"` // e.g. C18:1
	Share float64 `gorm:"not null" json:"share"`
}
