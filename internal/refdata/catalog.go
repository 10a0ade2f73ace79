// Package refdata owns the reference catalogue of oils: their fatty-acid
// profiles, environmental factors, sensory notes and aliases.
package refdata

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"lipidgenesis/internal/blend"
	"lipidgenesis/internal/esg"
	"lipidgenesis/internal/sensory"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// ErrInvalidCatalog is wrapped by every validation failure.
var ErrInvalidCatalog = errors.New("refdata: invalid catalog")

// OilEntry is everything the catalogue knows about one oil.
type OilEntry struct {
	Name      string
	Aliases   []string
	Profile   blend.Profile
	Factor    esg.Factor
	HasFactor bool
	Notes     sensory.OilNotes
	HasNotes  bool
}

// HasFootprint reports whether the oil can take part in footprint totals.
func (e OilEntry) HasFootprint() bool {
	return e.HasFactor && e.Factor.Footprint != nil
}

// Catalog is an immutable, validated set of oils and sensory lines.
type Catalog struct {
	oils    map[string]OilEntry
	names   []string
	lookup  map[string]string
	library sensory.Library
}

type document struct {
	Oils             []oilDocument              `yaml:"oils"`
	LegacyFootprints map[string]LegacyFootprint `yaml:"legacy_footprints"`
	Sensory          sensoryDocument            `yaml:"sensory"`
}

type oilDocument struct {
	Name    string             `yaml:"name"`
	Aliases []string           `yaml:"aliases"`
	Profile map[string]float64 `yaml:"profile"`
	ESG     *factorDocument    `yaml:"esg"`
	Sensory *sensory.OilNotes  `yaml:"sensory"`
}

type factorDocument struct {
	Impact        float64        `yaml:"impact"`
	Origin        string         `yaml:"origin"`
	Certification string         `yaml:"certification"`
	Footprint     *esg.Footprint `yaml:"footprint"`
}

type sensoryDocument struct {
	Occasions []string       `yaml:"occasions"`
	Lines     []lineDocument `yaml:"lines"`
}

type lineDocument struct {
	Name     string            `yaml:"name"`
	Top      []string          `yaml:"top"`
	Heart    []string          `yaml:"heart"`
	Base     []string          `yaml:"base"`
	Emotions []sensory.Emotion `yaml:"emotions"`
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Parse(embeddedCatalog)
})

// Default returns the catalogue compiled into the binary.
func Default() (*Catalog, error) {
	return loadDefault()
}

// MustDefault is Default for callers that cannot recover from a broken build.
func MustDefault() *Catalog {
	cat, err := Default()
	if err != nil {
		panic(err)
	}
	return cat
}

// LoadFile parses a catalogue override file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates a YAML catalogue. Legacy footprints are matched
// to oils by name or alias and merged into their environmental factors.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	entries := make([]OilEntry, 0, len(doc.Oils))
	for _, oil := range doc.Oils {
		entry := OilEntry{
			Name:    oil.Name,
			Aliases: oil.Aliases,
			Profile: blend.Profile(oil.Profile),
		}
		if oil.ESG != nil {
			entry.HasFactor = true
			entry.Factor = esg.Factor{
				ImpactCoefficient: oil.ESG.Impact,
				Origin:            oil.ESG.Origin,
				Certification:     oil.ESG.Certification,
				Footprint:         oil.ESG.Footprint,
			}
		}
		if oil.Sensory != nil {
			entry.HasNotes = true
			entry.Notes = *oil.Sensory
		}
		entries = append(entries, entry)
	}

	lines := make([]sensory.Recipe, 0, len(doc.Sensory.Lines))
	for _, line := range doc.Sensory.Lines {
		lines = append(lines, sensory.Recipe{
			Line:     line.Name,
			Pyramid:  sensory.Pyramid{Top: line.Top, Heart: line.Heart, Base: line.Base},
			Emotions: line.Emotions,
		})
	}

	cat, err := New(entries, lines, doc.Sensory.Occasions)
	if err != nil {
		return nil, err
	}
	if len(doc.LegacyFootprints) == 0 {
		return cat, nil
	}

	footprints, err := AdaptLegacyFootprints(doc.LegacyFootprints, cat.Canonical)
	if err != nil {
		return nil, err
	}
	for name, footprint := range footprints {
		entry := cat.oils[name]
		if entry.Factor.Footprint != nil {
			return nil, fmt.Errorf("%w: oil %q has both a footprint and a legacy footprint", ErrInvalidCatalog, name)
		}
		if !entry.HasFactor {
			entry.Factor = esg.StandardDefaults(name)
			entry.HasFactor = true
		}
		fp := footprint
		entry.Factor.Footprint = &fp
		cat.oils[name] = entry
	}
	return cat, nil
}

// New validates and copies the supplied data into a Catalog.
func New(entries []OilEntry, lines []sensory.Recipe, occasions []string) (*Catalog, error) {
	cat := &Catalog{
		oils:   make(map[string]OilEntry, len(entries)),
		lookup: make(map[string]string, len(entries)*2),
	}

	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: oil name must not be empty", ErrInvalidCatalog)
		}
		if err := cat.claim(name, name); err != nil {
			return nil, err
		}
		if err := validateEntry(name, entry); err != nil {
			return nil, err
		}

		stored := cloneEntry(entry)
		stored.Name = name
		stored.Aliases = stored.Aliases[:0]
		for _, alias := range entry.Aliases {
			alias = strings.TrimSpace(alias)
			if alias == "" {
				return nil, fmt.Errorf("%w: oil %q has an empty alias", ErrInvalidCatalog, name)
			}
			if err := cat.claim(alias, name); err != nil {
				return nil, err
			}
			stored.Aliases = append(stored.Aliases, alias)
		}
		cat.oils[name] = stored
		cat.names = append(cat.names, name)
	}
	sort.Strings(cat.names)

	seenLines := make(map[string]struct{}, len(lines))
	oilNotes := make(map[string]sensory.OilNotes)
	for _, line := range lines {
		key := strings.ToLower(strings.TrimSpace(line.Line))
		if key == "" {
			return nil, fmt.Errorf("%w: sensory line name must not be empty", ErrInvalidCatalog)
		}
		if _, dup := seenLines[key]; dup {
			return nil, fmt.Errorf("%w: duplicate sensory line %q", ErrInvalidCatalog, line.Line)
		}
		seenLines[key] = struct{}{}
	}
	for name, entry := range cat.oils {
		if entry.HasNotes {
			oilNotes[name] = entry.Notes
		}
	}
	cat.library = sensory.NewLibrary(lines, occasions, oilNotes)

	return cat, nil
}

func (c *Catalog) claim(label, owner string) error {
	key := strings.ToLower(label)
	if existing, ok := c.lookup[key]; ok {
		return fmt.Errorf("%w: name %q is used by both %q and %q", ErrInvalidCatalog, label, existing, owner)
	}
	c.lookup[key] = owner
	return nil
}

func validateEntry(name string, entry OilEntry) error {
	for acid, share := range entry.Profile {
		if _, err := blend.ParseAcidCode(acid); err != nil {
			return fmt.Errorf("%w: oil %q: %v", ErrInvalidCatalog, name, err)
		}
		if share < 0 || share > 100 {
			return fmt.Errorf("%w: oil %q: %s share %v outside [0,100]", ErrInvalidCatalog, name, acid, share)
		}
	}
	if !entry.HasFactor {
		return nil
	}
	if entry.Factor.ImpactCoefficient < 0 {
		return fmt.Errorf("%w: oil %q: negative impact coefficient", ErrInvalidCatalog, name)
	}
	if fp := entry.Factor.Footprint; fp != nil && (fp.CO2PerKg < 0 || fp.WaterLitresPerKg < 0) {
		return fmt.Errorf("%w: oil %q: negative footprint", ErrInvalidCatalog, name)
	}
	return nil
}

// OilNames returns the canonical oil names in lexicographic order.
func (c *Catalog) OilNames() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

// Oils returns every entry ordered by name.
func (c *Catalog) Oils() []OilEntry {
	entries := make([]OilEntry, 0, len(c.names))
	for _, name := range c.names {
		entries = append(entries, cloneEntry(c.oils[name]))
	}
	return entries
}

// Oil looks an entry up by canonical name or alias.
func (c *Catalog) Oil(name string) (OilEntry, bool) {
	canonical, ok := c.Canonical(name)
	if !ok {
		return OilEntry{}, false
	}
	return cloneEntry(c.oils[canonical]), true
}

// Canonical resolves a name or alias, ignoring case and surrounding space.
func (c *Catalog) Canonical(name string) (string, bool) {
	canonical, ok := c.lookup[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}

// Canonicalize rewrites alias keys to canonical names, summing percentages
// that land on the same oil. Unknown names are kept as given.
func (c *Catalog) Canonicalize(percentages blend.Percentages) blend.Percentages {
	out := make(blend.Percentages, len(percentages))
	for name, value := range percentages {
		key := name
		if canonical, ok := c.Canonical(name); ok {
			key = canonical
		}
		out[key] += value
	}
	return out
}

// Profiles returns the fatty-acid table of every oil.
func (c *Catalog) Profiles() blend.ProfileTable {
	table := make(blend.ProfileTable, len(c.oils))
	for name, entry := range c.oils {
		table[name] = cloneProfile(entry.Profile)
	}
	return table
}

// Factors returns the environmental records of the oils that have one.
func (c *Catalog) Factors() esg.FactorTable {
	table := make(esg.FactorTable, len(c.oils))
	for name, entry := range c.oils {
		if entry.HasFactor {
			table[name] = cloneFactor(entry.Factor)
		}
	}
	return table
}

// Sensory returns the sensory lines and per-oil notes.
func (c *Catalog) Sensory() sensory.Library {
	return c.library
}

// Acids returns every fatty acid present in the catalogue, shortest chain first.
func (c *Catalog) Acids() []string {
	return blend.SortByChain(c.Profiles().Acids())
}

// Lines returns the sensory lines with their full recipes.
func (c *Catalog) Lines() []sensory.Recipe {
	names := c.library.Lines()
	recipes := make([]sensory.Recipe, 0, len(names))
	for _, name := range names {
		recipe, _ := c.library.Recipe(name, "")
		recipes = append(recipes, recipe)
	}
	return recipes
}

func cloneEntry(e OilEntry) OilEntry {
	out := e
	out.Aliases = append([]string(nil), e.Aliases...)
	out.Profile = cloneProfile(e.Profile)
	out.Factor = cloneFactor(e.Factor)
	out.Notes = sensory.OilNotes{
		Notes:    append([]string(nil), e.Notes.Notes...),
		Emotions: append([]string(nil), e.Notes.Emotions...),
	}
	return out
}

func cloneProfile(p blend.Profile) blend.Profile {
	out := make(blend.Profile, len(p))
	for acid, share := range p {
		out[acid] = share
	}
	return out
}

func cloneFactor(f esg.Factor) esg.Factor {
	out := f
	if f.Footprint != nil {
		fp := *f.Footprint
		out.Footprint = &fp
	}
	return out
}
