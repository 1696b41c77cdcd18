package session

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Genre is one of the fixed story genres the initializer accepts.
type Genre string

const (
	GenreAdventure Genre = "adventure"
	GenreMystery   Genre = "mystery"
	GenreFantasy   Genre = "fantasy"
	GenreHorror    Genre = "horror"
	GenreSciFi     Genre = "scifi"
	GenreWestern   Genre = "western"
)

var genres = []Genre{
	GenreAdventure,
	GenreMystery,
	GenreFantasy,
	GenreHorror,
	GenreSciFi,
	GenreWestern,
}

var titleCaser = cases.Title(language.English)

// ParseGenre matches user input to a genre, case-insensitively.
// "Sci-Fi" and "science fiction" normalize to scifi.
func ParseGenre(s string) (Genre, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "", " ", "").Replace(normalized)
	if normalized == "sciencefiction" {
		normalized = "scifi"
	}
	for _, g := range genres {
		if normalized == string(g) {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown genre %q (valid: %s)", s, strings.Join(GenreNames(), ", "))
}

// Display returns the human-readable form used in prompts and UI.
func (g Genre) Display() string {
	if g == GenreSciFi {
		return "Sci-Fi"
	}
	return titleCaser.String(string(g))
}

// GenreNames lists all valid genres in display form.
func GenreNames() []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Display())
	}
	return names
}
