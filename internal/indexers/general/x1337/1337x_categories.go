package x1337

import (
	"strings"
)

// 1337x category names as they appear in category-search URLs
const (
	CategoryMovies      = "Movies"
	CategoryTV          = "TV"
	CategoryGames       = "Games"
	CategoryMusic       = "Music"
	CategoryApps        = "Apps"
	CategoryAnime       = "Anime"
	CategoryDocumentary = "Documentaries"
	CategoryOther       = "Other"
)

// DefaultCategory is used when the caller names no category or one 1337x
// does not know.
const DefaultCategory = CategoryMusic

// MapCategory maps a generic category name to its 1337x spelling, or "" when
// there is no match.
func MapCategory(category string) string {
	categoryLower := strings.ToLower(strings.TrimSpace(category))
	if categoryLower == "" {
		return ""
	}

	switch {
	case strings.Contains(categoryLower, "movie"):
		return CategoryMovies
	case categoryLower == "tv" || strings.Contains(categoryLower, "television"):
		return CategoryTV
	case strings.Contains(categoryLower, "game"):
		return CategoryGames
	case strings.Contains(categoryLower, "music") || strings.Contains(categoryLower, "audio"):
		return CategoryMusic
	case strings.Contains(categoryLower, "app") || strings.Contains(categoryLower, "software"):
		return CategoryApps
	case strings.Contains(categoryLower, "anime"):
		return CategoryAnime
	case strings.Contains(categoryLower, "doc"):
		return CategoryDocumentary
	case categoryLower == "other":
		return CategoryOther
	default:
		return ""
	}
}

func searchSegment(category string) string {
	if mapped := MapCategory(category); mapped != "" {
		return mapped
	}
	return DefaultCategory
}
