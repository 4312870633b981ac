package domain

import "strings"

// Category is one entry of the fixed complaint catalog. Key is the
// canonical lowercase identifier, Code the short prefix used in ticket
// IDs, Name the display form.
type Category struct {
	Key  string
	Code string
	Name string
}

// Catalog is the fixed set of sites complaints can be filed against.
var Catalog = []Category{
	{Key: "jokerbola", Code: "JB", Name: "JokerBola"},
	{Key: "nagabola", Code: "NB", Name: "NagaBola"},
	{Key: "macanbola", Code: "MB", Name: "MacanBola"},
	{Key: "ligapedia", Code: "LP", Name: "LigaPedia"},
	{Key: "pasarliga", Code: "PL", Name: "PasarLiga"},
}

// MatchCategory resolves free-text input against the catalog. Matching
// is case-insensitive and accepts the exact key, the exact display
// name, or a substring relationship in either direction. Empty or
// whitespace-only input never matches.
func MatchCategory(input string) (Category, bool) {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return Category{}, false
	}
	for _, c := range Catalog {
		name := strings.ToLower(c.Name)
		if strings.Contains(needle, c.Key) ||
			strings.Contains(needle, name) ||
			strings.Contains(c.Key, needle) ||
			strings.Contains(name, needle) {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryNames returns the display names, for prompts.
func CategoryNames() []string {
	names := make([]string, 0, len(Catalog))
	for _, c := range Catalog {
		names = append(names, c.Name)
	}
	return names
}
