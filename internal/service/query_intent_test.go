package service

import (
	"reflect"
	"testing"
)

func TestParseQueryIntent_Count(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{query: "give me 47 books", want: 20},
		{query: "books about whales", want: 10},
		{query: "top 5 comedy books", want: 5},
		{query: "Top 3 mysteries", want: 3},
		{query: "show me 7 fantasy novels", want: 7},
		{query: "12 books about space", want: 12},
		{query: "best 4 thrillers", want: 4},
		{query: "find 2 romance novels", want: 2},
		{query: "recommend 6 sci-fi", want: 6},
		{query: "top 0 books", want: 1},
		{query: "top 99999999999999999999999 books", want: 20},
		// "top N" outranks "N books"
		{query: "top 3 of your 8 books", want: 3},
		// "give me" outranks "best"
		{query: "best 9, no, give me 4", want: 4},
		{query: "top  15   horror", want: 15},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := ParseQueryIntent(tt.query).Count; got != tt.want {
				t.Errorf("Count = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseQueryIntent_Genres(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{query: "top 1 fantasy books", want: []string{"fantasy"}},
		{query: "I like books with murder and magic", want: []string{"mystery", "fantasy"}},
		{query: "a FUNNY love story", want: []string{"comedy", "romance"}},
		{query: "science fiction with aliens", want: []string{"sci-fi"}},
		{query: "scary vampire quest", want: []string{"horror", "adventure"}},
		{query: "an emotional read", want: []string{"drama"}},
		{query: "books about whales", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := ParseQueryIntent(tt.query).Genres; !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Genres = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseQueryIntent_RatingFloor(t *testing.T) {
	tests := []struct {
		query string
		want  *float64
	}{
		{query: "highly rated horror books", want: floatPtr(4.0)},
		{query: "popular romance", want: floatPtr(4.0)},
		{query: "top rated mysteries", want: floatPtr(4.0)},
		{query: "mystery books with high rating", want: floatPtr(4.0)},
		{query: "well rated fantasy", want: floatPtr(3.5)},
		{query: "something with a good rating", want: floatPtr(3.5)},
		{query: "popular books with a good rating", want: floatPtr(4.0)},
		{query: "fantasy books", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := ParseQueryIntent(tt.query).RatingFloor
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("RatingFloor = %v, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("RatingFloor = nil, want %v", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("RatingFloor = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestQueryIntentParser_CustomLimits(t *testing.T) {
	p := NewQueryIntentParser(5, 8)
	if got := p.Parse("books").Count; got != 5 {
		t.Errorf("default Count = %d, want 5", got)
	}
	if got := p.Parse("top 12").Count; got != 8 {
		t.Errorf("clamped Count = %d, want 8", got)
	}

	fallback := NewQueryIntentParser(0, 0)
	if got := fallback.Parse("top 30").Count; got != MaxResultCount {
		t.Errorf("Count = %d, want %d", got, MaxResultCount)
	}
}
