package service

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultResultCount = 10
	MaxResultCount     = 20

	highRatingFloor = 4.0
	goodRatingFloor = 3.5
)

// QueryIntent is what the rule-based parser extracted from a query.
type QueryIntent struct {
	Query string `json:"query"`
	// Count is the number of results asked for, already clamped.
	Count int `json:"count"`
	// Genres are the detected genre tags in table order.
	Genres []string `json:"genres,omitempty"`
	// RatingFloor is nil when the query did not ask for well-rated books.
	RatingFloor *float64 `json:"rating_floor,omitempty"`
}

// countPatterns are tried in order; the first match wins.
var countPatterns = []*regexp.Regexp{
	regexp.MustCompile(`top\s+(\d+)`),
	regexp.MustCompile(`give\s+me\s+(\d+)`),
	regexp.MustCompile(`show\s+me\s+(\d+)`),
	regexp.MustCompile(`(\d+)\s+books?`),
	regexp.MustCompile(`best\s+(\d+)`),
	regexp.MustCompile(`find\s+(\d+)`),
	regexp.MustCompile(`recommend\s+(\d+)`),
}

type genreKeywords struct {
	tag      string
	keywords []string
}

var genreTable = []genreKeywords{
	{tag: "comedy", keywords: []string{"comedy", "funny", "humor", "humorous", "comic"}},
	{tag: "romance", keywords: []string{"romance", "romantic", "love", "dating"}},
	{tag: "mystery", keywords: []string{"mystery", "detective", "crime", "murder", "thriller"}},
	{tag: "fantasy", keywords: []string{"fantasy", "magic", "magical", "wizard", "dragon"}},
	{tag: "sci-fi", keywords: []string{"sci-fi", "science fiction", "space", "future", "alien"}},
	{tag: "horror", keywords: []string{"horror", "scary", "frightening", "ghost", "vampire"}},
	{tag: "drama", keywords: []string{"drama", "dramatic", "emotional"}},
	{tag: "adventure", keywords: []string{"adventure", "quest", "journey", "exploration"}},
}

var (
	highRatingPhrases = []string{"highly rated", "best rated", "top rated", "high rating", "popular"}
	goodRatingPhrases = []string{"good rating", "well rated"}
)

// QueryIntentParser extracts count, genres and rating floor from free text.
// It is safe for concurrent use.
type QueryIntentParser struct {
	defaultCount int
	maxCount     int
}

// NewQueryIntentParser creates a parser with the given default and maximum
// result counts. Non-positive values fall back to 10 and 20.
func NewQueryIntentParser(defaultCount, maxCount int) *QueryIntentParser {
	if maxCount <= 0 {
		maxCount = MaxResultCount
	}
	if defaultCount <= 0 {
		defaultCount = DefaultResultCount
	}
	if defaultCount > maxCount {
		defaultCount = maxCount
	}
	return &QueryIntentParser{defaultCount: defaultCount, maxCount: maxCount}
}

var defaultIntentParser = NewQueryIntentParser(DefaultResultCount, MaxResultCount)

// ParseQueryIntent parses query with the default limits.
func ParseQueryIntent(query string) QueryIntent {
	return defaultIntentParser.Parse(query)
}

// Parse extracts the intent of query. It does no I/O.
func (p *QueryIntentParser) Parse(query string) QueryIntent {
	lower := strings.ToLower(query)
	return QueryIntent{
		Query:       query,
		Count:       p.parseCount(lower),
		Genres:      detectGenres(lower),
		RatingFloor: detectRatingFloor(lower),
	}
}

func (p *QueryIntentParser) parseCount(lower string) int {
	for _, pattern := range countPatterns {
		match := pattern.FindStringSubmatch(lower)
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			// only overflow gets here; the pattern guarantees digits
			return p.maxCount
		}
		return clampCount(n, p.maxCount)
	}
	return p.defaultCount
}

func clampCount(n, maxCount int) int {
	if n < 1 {
		return 1
	}
	if n > maxCount {
		return maxCount
	}
	return n
}

func detectGenres(lower string) []string {
	var genres []string
	for _, genre := range genreTable {
		for _, keyword := range genre.keywords {
			if strings.Contains(lower, keyword) {
				genres = append(genres, genre.tag)
				break
			}
		}
	}
	return genres
}

func detectRatingFloor(lower string) *float64 {
	if containsAny(lower, highRatingPhrases) {
		floor := highRatingFloor
		return &floor
	}
	if containsAny(lower, goodRatingPhrases) {
		floor := goodRatingFloor
		return &floor
	}
	return nil
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
