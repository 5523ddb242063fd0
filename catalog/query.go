package catalog

import (
	"sort"
	"strings"

	"tickethub-cli/model"
)

type SortKey string

const (
	SortDate       SortKey = "date"
	SortPrice      SortKey = "price"
	SortPopularity SortKey = "popularity"
)

// SortKeys lists the sort options in cycling order.
var SortKeys = []SortKey{SortDate, SortPrice, SortPopularity}

// CategoryAll matches every category.
const CategoryAll = "all"

// Query filters and orders a catalog.
type Query struct {
	Search   string
	Category string
	Tags     []string
	Sort     SortKey
}

// Apply returns the matching events in the requested order. The input is
// not modified.
func (q Query) Apply(events []model.Event) []model.Event {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	category := strings.ToLower(strings.TrimSpace(q.Category))

	out := make([]model.Event, 0, len(events))
	for _, event := range events {
		if search != "" &&
			!strings.Contains(strings.ToLower(event.Title), search) &&
			!strings.Contains(strings.ToLower(event.Description), search) {
			continue
		}
		if category != "" && category != CategoryAll && string(event.Category) != category {
			continue
		}
		if !hasAllTags(event, q.Tags) {
			continue
		}
		out = append(out, event)
	}

	switch q.Sort {
	case SortPrice:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.Regular < out[j].Price.Regular })
	case SortPopularity:
		sort.SliceStable(out, func(i, j int) bool { return rating(out[i]) > rating(out[j]) })
	case SortDate, "":
		sort.SliceStable(out, func(i, j int) bool { return dateBefore(out[i].Date, out[j].Date) })
	}
	return out
}

func hasAllTags(event model.Event, tags []string) bool {
	for _, want := range tags {
		want = strings.TrimSpace(want)
		if want == "" {
			continue
		}
		found := false
		for _, tag := range event.Tags {
			if strings.EqualFold(tag, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func rating(event model.Event) float64 {
	if event.Rating == nil {
		return 0
	}
	return *event.Rating
}

// dateBefore orders ISO dates ascending with undated events last.
func dateBefore(a, b string) bool {
	if a == "" || b == "" {
		return a != "" && b == ""
	}
	return a < b
}

// Tags returns every tag in the catalog once, in first-seen order.
func Tags(events []model.Event) []string {
	seen := map[string]bool{}
	var out []string
	for _, event := range events {
		for _, tag := range event.Tags {
			key := strings.ToLower(tag)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, tag)
		}
	}
	return out
}

// NextSort cycles through SortKeys.
func NextSort(current SortKey) SortKey {
	for i, key := range SortKeys {
		if key == current {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortDate
}

// NextCategory cycles all, movies, concerts, sports.
func NextCategory(current string) string {
	options := []string{CategoryAll}
	for _, category := range model.Categories {
		options = append(options, string(category))
	}
	for i, option := range options {
		if option == current {
			return options[(i+1)%len(options)]
		}
	}
	return CategoryAll
}
