// Package sensory holds the olfactory pyramids and evoked emotions attached to
// a blend's sensory line.
package sensory

import (
	"sort"
	"strings"

	"lipidgenesis/internal/blend"
)

// Sensory lines offered by the formulation dashboard.
const (
	LineVitalis  = "Vitalis"
	LineEssentia = "Essentia"
	LineArdor    = "Ardor"
	LineLumina   = "Lúmina"
)

// Usage occasions.
const (
	OccasionFace = "Face"
	OccasionBody = "Body"
	OccasionHair = "Hair"
	OccasionBath = "Bath"
)

var defaultOccasions = []string{OccasionFace, OccasionBody, OccasionHair, OccasionBath}

// DefaultOccasions returns the usage occasions in display order.
func DefaultOccasions() []string {
	return cloneStrings(defaultOccasions)
}

// Emotion is an evoked feeling and the icon shown beside it.
type Emotion struct {
	Label string `json:"label" yaml:"label"`
	Icon  string `json:"icon,omitempty" yaml:"icon"`
}

// Pyramid lists the top, heart and base notes of a line.
type Pyramid struct {
	Top   []string `json:"top" yaml:"top"`
	Heart []string `json:"heart" yaml:"heart"`
	Base  []string `json:"base" yaml:"base"`
}

// Recipe is the sensory description rendered for a line and occasion.
type Recipe struct {
	Line     string    `json:"line"`
	Occasion string    `json:"occasion,omitempty"`
	Pyramid  Pyramid   `json:"pyramid"`
	Emotions []Emotion `json:"emotions"`
}

// EmotionLabels returns the emotion labels without icons.
func (r Recipe) EmotionLabels() []string {
	labels := make([]string, 0, len(r.Emotions))
	for _, emotion := range r.Emotions {
		labels = append(labels, emotion.Label)
	}
	return labels
}

// OilNotes describes the character a single oil brings to a blend.
type OilNotes struct {
	Notes    []string `json:"notes" yaml:"notes"`
	Emotions []string `json:"emotions" yaml:"emotions"`
}

// Accord is an oil's sensory contribution together with its share of the blend.
type Accord struct {
	Oil      string   `json:"oil"`
	Share    float64  `json:"share"`
	Notes    []string `json:"notes"`
	Emotions []string `json:"emotions"`
}

// Library is an immutable collection of sensory lines and per-oil notes.
type Library struct {
	lines     []Recipe
	occasions []string
	oils      map[string]OilNotes
}

// NewLibrary copies the supplied data into a Library. Lines keep their order;
// an empty occasion list falls back to DefaultOccasions.
func NewLibrary(lines []Recipe, occasions []string, oils map[string]OilNotes) Library {
	lib := Library{
		lines:     make([]Recipe, 0, len(lines)),
		occasions: cloneStrings(occasions),
		oils:      make(map[string]OilNotes, len(oils)),
	}
	if len(lib.occasions) == 0 {
		lib.occasions = DefaultOccasions()
	}
	for _, line := range lines {
		lib.lines = append(lib.lines, cloneRecipe(line))
	}
	for oil, notes := range oils {
		lib.oils[oil] = OilNotes{Notes: cloneStrings(notes.Notes), Emotions: cloneStrings(notes.Emotions)}
	}
	return lib
}

// Lines returns the line names in catalogue order.
func (l Library) Lines() []string {
	names := make([]string, 0, len(l.lines))
	for _, line := range l.lines {
		names = append(names, line.Line)
	}
	return names
}

// Occasions returns the usage occasions in display order.
func (l Library) Occasions() []string {
	return cloneStrings(l.occasions)
}

// ValidOccasion reports whether the occasion is known, ignoring case.
func (l Library) ValidOccasion(occasion string) bool {
	_, ok := l.canonicalOccasion(occasion)
	return ok
}

// Recipe returns the pyramid and emotions of a line. Line and occasion are
// matched ignoring case; the occasion is carried through but does not change
// the notes. Unknown lines return false.
func (l Library) Recipe(line, occasion string) (Recipe, bool) {
	for _, candidate := range l.lines {
		if !strings.EqualFold(candidate.Line, strings.TrimSpace(line)) {
			continue
		}
		recipe := cloneRecipe(candidate)
		if canonical, ok := l.canonicalOccasion(occasion); ok {
			recipe.Occasion = canonical
		} else {
			recipe.Occasion = strings.TrimSpace(occasion)
		}
		return recipe, true
	}
	return Recipe{}, false
}

// Oil returns the notes recorded for a single oil.
func (l Library) Oil(name string) (OilNotes, bool) {
	notes, ok := l.oils[name]
	if !ok {
		return OilNotes{}, false
	}
	return OilNotes{Notes: cloneStrings(notes.Notes), Emotions: cloneStrings(notes.Emotions)}, true
}

// OilNotes returns a copy of every per-oil entry.
func (l Library) OilNotes() map[string]OilNotes {
	out := make(map[string]OilNotes, len(l.oils))
	for oil := range l.oils {
		out[oil], _ = l.Oil(oil)
	}
	return out
}

// BlendAccords lists the notes of the oils present in the blend, largest share
// first. Oils without notes or with a zero share are left out.
func (l Library) BlendAccords(percentages blend.Percentages) []Accord {
	accords := make([]Accord, 0, len(percentages))
	for oil, share := range percentages {
		if share <= 0 {
			continue
		}
		notes, ok := l.Oil(oil)
		if !ok {
			continue
		}
		accords = append(accords, Accord{Oil: oil, Share: share, Notes: notes.Notes, Emotions: notes.Emotions})
	}
	sort.Slice(accords, func(i, j int) bool {
		if accords[i].Share != accords[j].Share {
			return accords[i].Share > accords[j].Share
		}
		return accords[i].Oil < accords[j].Oil
	})
	return accords
}

func (l Library) canonicalOccasion(occasion string) (string, bool) {
	trimmed := strings.TrimSpace(occasion)
	for _, candidate := range l.occasions {
		if strings.EqualFold(candidate, trimmed) {
			return candidate, true
		}
	}
	return "", false
}

func cloneRecipe(r Recipe) Recipe {
	emotions := make([]Emotion, len(r.Emotions))
	copy(emotions, r.Emotions)
	return Recipe{
		Line:     r.Line,
		Occasion: r.Occasion,
		Pyramid: Pyramid{
			Top:   cloneStrings(r.Pyramid.Top),
			Heart: cloneStrings(r.Pyramid.Heart),
			Base:  cloneStrings(r.Pyramid.Base),
		},
		Emotions: emotions,
	}
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
