package refdata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"lipidgenesis/internal/blend"
	"lipidgenesis/internal/esg"
	applog "lipidgenesis/internal/log"
	"lipidgenesis/internal/sensory"
	"lipidgenesis/models"
)

// FromDB builds a Catalog from the oils and sensory lines in the database.
func FromDB(ctx context.Context, db *gorm.DB) (*Catalog, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is nil")
	}

	var oils []models.Oil
	if err := db.WithContext(ctx).
		Preload("Aliases").
		Preload("FattyAcids").
		Order("name asc").
		Find(&oils).Error; err != nil {
		return nil, fmt.Errorf("load oils: %w", err)
	}

	var lines []models.SensoryLine
	if err := db.WithContext(ctx).Order("position asc").Order("name asc").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("load sensory lines: %w", err)
	}

	entries := make([]OilEntry, 0, len(oils))
	for _, oil := range oils {
		entries = append(entries, entryFromModel(oil))
	}

	recipes := make([]sensory.Recipe, 0, len(lines))
	for _, line := range lines {
		emotions := make([]sensory.Emotion, 0, len(line.Emotions))
		for _, emotion := range line.Emotions {
			emotions = append(emotions, sensory.Emotion{Label: emotion.Label, Icon: emotion.Icon})
		}
		recipes = append(recipes, sensory.Recipe{
			Line:     line.Name,
			Pyramid:  sensory.Pyramid{Top: line.Top, Heart: line.Heart, Base: line.Base},
			Emotions: emotions,
		})
	}

	applog.Debug(ctx, "catalog loaded from database", "oils", len(entries), "lines", len(recipes))
	return New(entries, recipes, nil)
}

// Seed upserts every oil and sensory line of the catalogue in one transaction.
func Seed(ctx context.Context, db *gorm.DB, cat *Catalog) error {
	if db == nil {
		return fmt.Errorf("database handle is nil")
	}
	if cat == nil {
		return fmt.Errorf("catalog is nil")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range cat.Oils() {
			if err := saveOil(tx, entry); err != nil {
				return err
			}
		}
		for position, recipe := range cat.Lines() {
			if err := saveLine(tx, position, recipe); err != nil {
				return err
			}
		}
		applog.Debug(ctx, "catalog seeded", "oils", len(cat.names))
		return nil
	})
}

// SaveOil upserts a single oil by name in its own transaction. The fatty-acid
// profile is replaced only when the entry carries one, the environmental
// fields only when HasFactor is set, and aliases are merged with the stored
// ones.
func SaveOil(ctx context.Context, db *gorm.DB, entry OilEntry) error {
	if db == nil {
		return fmt.Errorf("database handle is nil")
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveOil(tx, entry)
	})
}

func saveOil(tx *gorm.DB, entry OilEntry) error {
	name := strings.TrimSpace(entry.Name)
	if name == "" {
		return fmt.Errorf("oil name must not be empty")
	}

	var oil models.Oil
	err := tx.Where("name = ?", name).First(&oil).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		oil = models.Oil{Name: name}
	case err != nil:
		return fmt.Errorf("find oil %q: %w", name, err)
	}

	if entry.HasFactor {
		impact := entry.Factor.ImpactCoefficient
		oil.ImpactCoefficient = &impact
		oil.Origin = entry.Factor.Origin
		oil.Certification = entry.Factor.Certification
		oil.CO2PerKg, oil.WaterLitresPerKg = nil, nil
		if fp := entry.Factor.Footprint; fp != nil {
			co2, water := fp.CO2PerKg, fp.WaterLitresPerKg
			oil.CO2PerKg, oil.WaterLitresPerKg = &co2, &water
		}
	}
	if entry.HasNotes {
		oil.SensoryNotes = entry.Notes.Notes
		oil.SensoryEmotions = entry.Notes.Emotions
	}

	if err := tx.Omit("Aliases", "FattyAcids").Save(&oil).Error; err != nil {
		return fmt.Errorf("save oil %q: %w", name, err)
	}
	if oil.ID == 0 {
		return fmt.Errorf("missing primary key for %q after upsert", name)
	}

	if len(entry.Profile) > 0 {
		if err := tx.Unscoped().Where("oil_id = ?", oil.ID).Delete(&models.FattyAcidShare{}).Error; err != nil {
			return fmt.Errorf("clear fatty acids for %q: %w", name, err)
		}
		shares := make([]models.FattyAcidShare, 0, len(entry.Profile))
		for _, acid := range blend.SortByChain(profileAcids(entry.Profile)) {
			shares = append(shares, models.FattyAcidShare{OilID: oil.ID, Acid: acid, Share: entry.Profile[acid]})
		}
		if err := tx.Create(&shares).Error; err != nil {
			return fmt.Errorf("store fatty acids for %q: %w", name, err)
		}
	}

	return mergeAliases(tx, oil.ID, name, entry.Aliases)
}

func mergeAliases(tx *gorm.DB, oilID uint, name string, aliases []string) error {
	var existing []models.OilAlias
	if err := tx.Where("oil_id = ?", oilID).Find(&existing).Error; err != nil {
		return fmt.Errorf("load aliases for %q: %w", name, err)
	}

	known := make(map[string]struct{}, len(existing)+1)
	known[strings.ToLower(name)] = struct{}{}
	for _, alias := range existing {
		known[strings.ToLower(alias.Alias)] = struct{}{}
	}

	for _, alias := range aliases {
		alias = strings.TrimSpace(alias)
		key := strings.ToLower(alias)
		if alias == "" {
			continue
		}
		if _, ok := known[key]; ok {
			continue
		}
		known[key] = struct{}{}
		if err := tx.Create(&models.OilAlias{OilID: oilID, Alias: alias}).Error; err != nil {
			return fmt.Errorf("add alias %q to %q: %w", alias, name, err)
		}
	}
	return nil
}

func saveLine(tx *gorm.DB, position int, recipe sensory.Recipe) error {
	var line models.SensoryLine
	err := tx.Where("name = ?", recipe.Line).First(&line).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = models.SensoryLine{Name: recipe.Line}
	case err != nil:
		return fmt.Errorf("find sensory line %q: %w", recipe.Line, err)
	}

	line.Position = position
	line.Top = recipe.Pyramid.Top
	line.Heart = recipe.Pyramid.Heart
	line.Base = recipe.Pyramid.Base
	line.Emotions = make([]models.LineEmotion, 0, len(recipe.Emotions))
	for _, emotion := range recipe.Emotions {
		line.Emotions = append(line.Emotions, models.LineEmotion{Label: emotion.Label, Icon: emotion.Icon})
	}

	if err := tx.Save(&line).Error; err != nil {
		return fmt.Errorf("save sensory line %q: %w", recipe.Line, err)
	}
	return nil
}

func entryFromModel(oil models.Oil) OilEntry {
	entry := OilEntry{
		Name:    oil.Name,
		Profile: make(blend.Profile, len(oil.FattyAcids)),
	}
	for _, alias := range oil.Aliases {
		entry.Aliases = append(entry.Aliases, alias.Alias)
	}
	for _, share := range oil.FattyAcids {
		entry.Profile[share.Acid] = share.Share
	}
	if oil.ImpactCoefficient != nil {
		entry.HasFactor = true
		entry.Factor = esg.Factor{
			ImpactCoefficient: *oil.ImpactCoefficient,
			Origin:            oil.Origin,
			Certification:     oil.Certification,
		}
		if oil.CO2PerKg != nil && oil.WaterLitresPerKg != nil {
			entry.Factor.Footprint = &esg.Footprint{CO2PerKg: *oil.CO2PerKg, WaterLitresPerKg: *oil.WaterLitresPerKg}
		}
	}
	if len(oil.SensoryNotes) > 0 || len(oil.SensoryEmotions) > 0 {
		entry.HasNotes = true
		entry.Notes = sensory.OilNotes{Notes: oil.SensoryNotes, Emotions: oil.SensoryEmotions}
	}
	return entry
}

func profileAcids(profile blend.Profile) []string {
	acids := make([]string, 0, len(profile))
	for acid := range profile {
		acids = append(acids, acid)
	}
	return acids
}
