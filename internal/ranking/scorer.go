package ranking

import (
	"cmp"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/emilythestrangee/pyra/backend/internal/models"
	"github.com/emilythestrangee/pyra/backend/internal/voting"
)

type ScoredFactCheck struct {
	models.FactCheck
	Label   string
	Counts  voting.Counts
	Hotness float64
}

type ScoredComment struct {
	models.Comment
	Counts  voting.Counts
	Hotness float64
}

// ScoredArticle is an article with its children scored and ordered.
// FactCheckLabel comes from the hottest fact-check.
type ScoredArticle struct {
	models.Article
	Counts         voting.Counts
	Hotness        float64
	FactCheckLabel string
	FactChecks     []ScoredFactCheck
	Comments       []ScoredComment
}

// Scorer computes hotness relative to its clock.
type Scorer struct {
	clock clockwork.Clock
	decay time.Duration
}

func NewScorer(clock clockwork.Clock, decay time.Duration) *Scorer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if decay <= 0 {
		decay = DefaultDecay
	}
	return &Scorer{clock: clock, decay: decay}
}

func (s *Scorer) Hotness(net int, createdAt time.Time) float64 {
	return s.hotnessAt(net, createdAt, s.clock.Now())
}

func (s *Scorer) hotnessAt(net int, createdAt, now time.Time) float64 {
	return Hotness(net, now.Sub(createdAt), s.decay)
}

// Refs lists every votable in the articles: each article, its fact-checks and its comments.
func Refs(articles []models.Article) []models.Ref {
	var refs []models.Ref
	for _, a := range articles {
		refs = append(refs, a.Ref())
		for _, fc := range a.FactChecks {
			refs = append(refs, fc.Ref())
		}
		for _, c := range a.Comments {
			refs = append(refs, c.Ref())
		}
	}
	return refs
}

// Score attaches counts and hotness to an article and its preloaded children.
// Missing counts read as zero.
func (s *Scorer) Score(a models.Article, counts map[models.Ref]voting.Counts) ScoredArticle {
	return s.scoreAt(a, counts, s.clock.Now())
}

func (s *Scorer) scoreAt(a models.Article, counts map[models.Ref]voting.Counts, now time.Time) ScoredArticle {
	out := ScoredArticle{
		Article:        a,
		Counts:         counts[a.Ref()],
		FactCheckLabel: Unverified,
		FactChecks:     make([]ScoredFactCheck, 0, len(a.FactChecks)),
		Comments:       make([]ScoredComment, 0, len(a.Comments)),
	}
	out.Hotness = s.hotnessAt(out.Counts.Net(), a.CreatedAt, now)

	for _, fc := range a.FactChecks {
		c := counts[fc.Ref()]
		out.FactChecks = append(out.FactChecks, ScoredFactCheck{
			FactCheck: fc,
			Label:     LevelLabel(fc.FactCheckLevel),
			Counts:    c,
			Hotness:   s.hotnessAt(c.Net(), fc.CreatedAt, now),
		})
	}
	slices.SortStableFunc(out.FactChecks, func(x, y ScoredFactCheck) int {
		return cmp.Or(
			cmp.Compare(y.Hotness, x.Hotness),
			cmp.Compare(y.Counts.Net(), x.Counts.Net()),
			cmp.Compare(y.ID, x.ID),
		)
	})
	if len(out.FactChecks) > 0 {
		out.FactCheckLabel = out.FactChecks[0].Label
	}

	for _, cm := range a.Comments {
		c := counts[cm.Ref()]
		out.Comments = append(out.Comments, ScoredComment{
			Comment: cm,
			Counts:  c,
			Hotness: s.hotnessAt(c.Net(), cm.CreatedAt, now),
		})
	}
	return out
}

// ScoreAll scores every article against a single reading of the clock, so
// equal timestamps always get equal ages.
func (s *Scorer) ScoreAll(articles []models.Article, counts map[models.Ref]voting.Counts) []ScoredArticle {
	now := s.clock.Now()
	out := make([]ScoredArticle, 0, len(articles))
	for _, a := range articles {
		out = append(out, s.scoreAt(a, counts, now))
	}
	return out
}
