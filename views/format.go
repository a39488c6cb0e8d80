package views

import (
	"fmt"
	"strings"

	"github.com/AdamBeresnev/decide2watch/internal/bracket"
)

// FormatRuntime renders minutes as "2h 16m". Unknown runtimes are empty.
func FormatRuntime(minutes *int) string {
	if minutes == nil || *minutes <= 0 {
		return ""
	}
	h, m := *minutes/60, *minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

func FormatRating(vote float64) string {
	return fmt.Sprintf("%.1f", vote)
}

func FormatSeasons(seasons *int) string {
	if seasons == nil || *seasons <= 0 {
		return ""
	}
	if *seasons == 1 {
		return "1 season"
	}
	return fmt.Sprintf("%d seasons", *seasons)
}

// Facts is the short line under a title: year, length and type.
func Facts(item bracket.MediaItem) string {
	parts := []string{}
	if y := item.Year(); y != "" {
		parts = append(parts, y)
	}
	if item.MediaType == bracket.MediaTV {
		if s := FormatSeasons(item.NumberOfSeasons); s != "" {
			parts = append(parts, s)
		}
		parts = append(parts, "TV")
	} else {
		if r := FormatRuntime(item.Runtime); r != "" {
			parts = append(parts, r)
		}
		parts = append(parts, "Movie")
	}
	return strings.Join(parts, " · ")
}

func ProviderLabel(t bracket.ProviderType) string {
	switch t {
	case bracket.ProviderFlatrate:
		return "Stream"
	case bracket.ProviderFree:
		return "Free"
	case bracket.ProviderRent:
		return "Rent"
	case bracket.ProviderBuy:
		return "Buy"
	}
	return string(t)
}

func FilterLabel(filter string) string {
	switch filter {
	case "movie":
		return "Movies"
	case "tv":
		return "TV Shows"
	case "both":
		return "Movies & TV"
	}
	return filter
}
