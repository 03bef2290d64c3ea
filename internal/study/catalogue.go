package study

// subCategories are the tabs offered to admins for each category. The
// stores accept any sub-category; this list only drives the editors.
var subCategories = map[Category][]string{
	CategoryPoem:       {"Line by Line", "Scenerio", "Q & A"},
	CategoryDrama:      {"A-Z", "Q & A"},
	CategoryLiterature: {"A-Z", "Q & A"},
	CategoryExam:       {"Poem", "Drama", "Literature"},
}

// SubCategories returns the admin sub-categories for c.
func SubCategories(c Category) []string {
	subs := subCategories[c]
	out := make([]string, len(subs))
	copy(out, subs)
	return out
}

// Catalogue is the full set of selectable values, for clients that build
// their own selectors.
type Catalogue struct {
	Categories    []Category            `json:"categories"`
	SubCategories map[Category][]string `json:"subCategories"`
	Levels        []Level               `json:"levels"`
	Languages     []Language            `json:"languages"`
}

// DefaultCatalogue returns the catalogue of the application.
func DefaultCatalogue() Catalogue {
	subs := make(map[Category][]string, len(Categories))
	for _, c := range Categories {
		subs[c] = SubCategories(c)
	}
	return Catalogue{
		Categories:    append([]Category(nil), Categories...),
		SubCategories: subs,
		Levels:        append([]Level(nil), Levels...),
		Languages:     []Language{English, Bengali},
	}
}
