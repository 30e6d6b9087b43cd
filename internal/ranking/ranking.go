// Package ranking scores articles, fact-checks and comments from their votes
// and orders article listings by hotness or recency.
package ranking

import (
	"math"
	"strings"
	"time"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
	"github.com/emilythestrangee/pyra/backend/internal/models"
)

// DefaultDecay is how long it takes for age to cost one order of magnitude of net votes.
const DefaultDecay = 12*time.Hour + 30*time.Minute

type Order string

const (
	SortHot Order = "hot"
	SortNew Order = "new"
)

// ParseOrder defaults to hot when s is empty.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortHot:
		return SortHot, nil
	case SortNew:
		return SortNew, nil
	}
	return "", apperrors.InvalidArgument("sort must be hot or new").WithField("sort", s)
}

// Filter selects an article category.
type Filter string

const (
	FilterNews      Filter = models.CategoryNews
	FilterUplifting Filter = models.CategoryUplifting
)

// ParseFilter defaults to news when s is empty.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterNews:
		return FilterNews, nil
	case FilterUplifting:
		return FilterUplifting, nil
	}
	return "", apperrors.InvalidArgument("filter must be news or uplifting").WithField("filter", s)
}

const Unverified = "Unverified"

var levelLabels = [...]string{
	0: Unverified,
	1: "False",
	2: "Misleading",
	3: "Mostly True",
	4: "Verified",
}

// LevelLabel names a fact-check level; out of range levels read as Unverified.
func LevelLabel(level int) string {
	if level < 0 || level >= len(levelLabels) {
		return Unverified
	}
	return levelLabels[level]
}

// Hotness is sign(net)*log10(max(|net|, 1)) - age/decay. It never decreases
// as net grows and never increases as age grows.
func Hotness(net int, age, decay time.Duration) float64 {
	if age < 0 {
		age = 0
	}
	if decay <= 0 {
		decay = DefaultDecay
	}

	magnitude := math.Log10(math.Max(math.Abs(float64(net)), 1))
	var sign float64
	switch {
	case net > 0:
		sign = 1
	case net < 0:
		sign = -1
	}
	return sign*magnitude - float64(age)/float64(decay)
}
