package sensory

import (
	"testing"

	"lipidgenesis/internal/blend"
)

func testLibrary() Library {
	return NewLibrary(
		[]Recipe{
			{
				Line:     LineVitalis,
				Pyramid:  Pyramid{Top: []string{"Lemongrass", "Rosemary"}, Heart: []string{"Lavender", "Geranium"}, Base: []string{"Cedar", "Sandalwood"}},
				Emotions: []Emotion{{Label: "Invigorating", Icon: "⚡"}, {Label: "Balance", Icon: "🌿"}},
			},
			{
				Line:     LineLumina,
				Pyramid:  Pyramid{Top: []string{"Mandarin"}, Heart: []string{"Lily"}, Base: []string{"Musk"}},
				Emotions: []Emotion{{Label: "Lightness"}},
			},
		},
		nil,
		map[string]OilNotes{
			"Palm Oil":        {Notes: []string{"nutty", "earthy"}, Emotions: []string{"comfort", "nourishment"}},
			"Palm Kernel Oil": {Notes: []string{"coconut", "sweet"}, Emotions: []string{"joy", "lightness"}},
		},
	)
}

func TestRecipeMatchesLineIgnoringCase(t *testing.T) {
	t.Parallel()

	recipe, ok := testLibrary().Recipe("  vitalis ", "face")
	if !ok {
		t.Fatal("expected Vitalis recipe to be found")
	}
	if recipe.Line != LineVitalis {
		t.Fatalf("Recipe().Line = %q, want %q", recipe.Line, LineVitalis)
	}
	if recipe.Occasion != OccasionFace {
		t.Fatalf("Recipe().Occasion = %q, want %q", recipe.Occasion, OccasionFace)
	}
	if got := recipe.EmotionLabels(); len(got) != 2 || got[0] != "Invigorating" {
		t.Fatalf("EmotionLabels() = %v", got)
	}
}

func TestRecipeUnknownLine(t *testing.T) {
	t.Parallel()

	recipe, ok := testLibrary().Recipe("Nocturna", OccasionBody)
	if ok {
		t.Fatalf("expected unknown line to be rejected, got %+v", recipe)
	}
	if recipe.Line != "" || len(recipe.Pyramid.Top) != 0 {
		t.Fatalf("expected zero recipe, got %+v", recipe)
	}
}

func TestRecipeReturnsCopies(t *testing.T) {
	t.Parallel()

	lib := testLibrary()
	first, _ := lib.Recipe(LineVitalis, "")
	first.Pyramid.Top[0] = "mutated"

	second, _ := lib.Recipe(LineVitalis, "")
	if second.Pyramid.Top[0] != "Lemongrass" {
		t.Fatalf("library was mutated through a returned recipe: %v", second.Pyramid.Top)
	}
}

func TestOilNotesReturnsCopies(t *testing.T) {
	t.Parallel()

	lib := testLibrary()
	notes := lib.OilNotes()
	if len(notes) != 2 {
		t.Fatalf("OilNotes() returned %d entries, want 2", len(notes))
	}
	notes["Palm Oil"].Notes[0] = "mutated"

	again, ok := lib.Oil("Palm Oil")
	if !ok || again.Notes[0] != "nutty" {
		t.Fatalf("library was mutated through OilNotes(): %+v", again)
	}
}

func TestOccasionsDefault(t *testing.T) {
	t.Parallel()

	lib := testLibrary()
	if got := lib.Occasions(); len(got) != 4 || got[0] != OccasionFace {
		t.Fatalf("Occasions() = %v", got)
	}
	if !lib.ValidOccasion("BATH") {
		t.Fatal("expected BATH to be a valid occasion")
	}
	if lib.ValidOccasion("Kitchen") {
		t.Fatal("expected Kitchen to be rejected")
	}
}

func TestLinesKeepCatalogueOrder(t *testing.T) {
	t.Parallel()

	got := testLibrary().Lines()
	if len(got) != 2 || got[0] != LineVitalis || got[1] != LineLumina {
		t.Fatalf("Lines() = %v", got)
	}
}

func TestBlendAccordsOrderedByShare(t *testing.T) {
	t.Parallel()

	accords := testLibrary().BlendAccords(blend.Percentages{
		"Palm Oil":        20,
		"Palm Kernel Oil": 60,
		"Palm Olein":      20,
		"Unused":          0,
	})

	if len(accords) != 2 {
		t.Fatalf("expected two accords, got %+v", accords)
	}
	if accords[0].Oil != "Palm Kernel Oil" || accords[1].Oil != "Palm Oil" {
		t.Fatalf("unexpected accord order: %+v", accords)
	}
	if accords[0].Notes[0] != "coconut" {
		t.Fatalf("expected coconut note first, got %v", accords[0].Notes)
	}
}
