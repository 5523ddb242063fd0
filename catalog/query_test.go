package catalog

import (
	"testing"

	"tickethub-cli/model"
)

func ptr(v float64) *float64 { return &v }

func sampleEvents() []model.Event {
	return []model.Event{
		{Id: "1", Title: "Rock Night", Description: "Loud", Category: model.CategoryConcerts, Date: "2026-05-03", Price: model.PriceTiers{Regular: 40}, Rating: ptr(4.1), Tags: []string{"Rock", "Live"}},
		{Id: "2", Title: "Cup Final", Description: "Football", Category: model.CategorySports, Date: "2026-04-20", Price: model.PriceTiers{Regular: 25}, Rating: ptr(4.8), Tags: []string{"Football"}},
		{Id: "3", Title: "Space Saga", Description: "A rock opera in space", Category: model.CategoryMovies, Date: "", Price: model.PriceTiers{Regular: 12}, Tags: []string{"IMAX", "live"}},
	}
}

func ids(events []model.Event) string {
	out := ""
	for _, event := range events {
		out += event.Id
	}
	return out
}

func TestQuery_Apply(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{name: "default sorts by date, undated last", query: Query{}, want: "213"},
		{name: "search title or description", query: Query{Search: "ROCK"}, want: "13"},
		{name: "category", query: Query{Category: "sports"}, want: "2"},
		{name: "category all", query: Query{Category: "all"}, want: "213"},
		{name: "tags all must match", query: Query{Tags: []string{"live", "rock"}}, want: "1"},
		{name: "tags case-insensitive", query: Query{Tags: []string{"LIVE"}}, want: "13"},
		{name: "price ascending", query: Query{Sort: SortPrice}, want: "321"},
		{name: "popularity descending", query: Query{Sort: SortPopularity}, want: "213"},
		{name: "no match", query: Query{Search: "opera", Category: "sports"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(tt.query.Apply(sampleEvents())); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTagsAndCycling(t *testing.T) {
	tags := Tags(sampleEvents())
	if len(tags) != 4 || tags[0] != "Rock" || tags[3] != "IMAX" {
		t.Fatalf("unexpected tags: %v", tags)
	}
	if NextSort(SortPopularity) != SortDate || NextSort(SortDate) != SortPrice {
		t.Fatal("unexpected sort cycle")
	}
	if NextCategory("all") != "movies" || NextCategory("sports") != "all" || NextCategory("bogus") != "all" {
		t.Fatal("unexpected category cycle")
	}
}
