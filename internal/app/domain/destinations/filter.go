package destinations

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

var titleCaser = cases.Title(language.English)

func normalize(s string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(s)))
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseFilter reads the listing filter from query parameters:
// priceLevel=1,2&categories=beach,City&region=asia&excludeSwipedBy=7.
// Category and region names are matched case-insensitively.
func ParseFilter(q url.Values) (models.DestinationFilter, error) {
	var f models.DestinationFilter

	for _, raw := range splitList(q.Get("priceLevel")) {
		level, err := strconv.Atoi(raw)
		if err != nil || level < 1 || level > 3 {
			return f, fmt.Errorf("%w: priceLevel must be 1, 2 or 3, got %q", models.ErrValidation, raw)
		}
		f.PriceLevels = append(f.PriceLevels, level)
	}

	for _, raw := range splitList(q.Get("categories")) {
		c := models.Category(normalize(raw))
		if !models.ValidCategory(c) {
			return f, fmt.Errorf("%w: unknown category %q", models.ErrValidation, raw)
		}
		f.Categories = append(f.Categories, c)
	}

	if raw := strings.TrimSpace(q.Get("region")); raw != "" {
		r := models.Region(normalize(raw))
		if !models.ValidRegion(r) {
			return f, fmt.Errorf("%w: unknown region %q", models.ErrValidation, raw)
		}
		f.Region = r
	}

	if raw := strings.TrimSpace(q.Get("excludeSwipedBy")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, fmt.Errorf("%w: invalid excludeSwipedBy %q", models.ErrValidation, raw)
		}
		f.ExcludeSwipedBy = id
	}

	return f, nil
}

// matches applies every filter field except ExcludeSwipedBy.
func matches(f models.DestinationFilter, d models.Destination) bool {
	if len(f.PriceLevels) > 0 {
		found := false
		for _, level := range f.PriceLevels {
			if d.PriceLevel == level {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Categories) > 0 && !d.HasAnyCategory(f.Categories) {
		return false
	}
	if f.Region != "" && d.Region != f.Region {
		return false
	}
	return true
}

// cacheParts returns the filter fields in a stable order for key building.
func cacheParts(f models.DestinationFilter) (levels []int, categories []string, region string) {
	levels = append(levels, f.PriceLevels...)
	sort.Ints(levels)
	for _, c := range f.Categories {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)
	return levels, categories, string(f.Region)
}
