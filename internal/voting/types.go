// Package voting records per-user votes on articles, fact-checks and comments
// and aggregates them into like/dislike counts.
package voting

import (
	"fmt"
	"strings"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
	"github.com/emilythestrangee/pyra/backend/internal/models"
)

// Direction is what a voter clicked.
type Direction int

const (
	Dislike Direction = -1
	Like    Direction = 1
)

func (d Direction) Valid() bool {
	return d == Like || d == Dislike
}

func (d Direction) String() string {
	switch d {
	case Like:
		return "like"
	case Dislike:
		return "dislike"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "like", "up":
		return Like, nil
	case "dislike", "down":
		return Dislike, nil
	}
	return 0, apperrors.InvalidArgument("direction must be like or dislike").WithField("direction", s)
}

// Counts is the aggregate over current votes for one votable.
type Counts struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

func (c Counts) Net() int {
	return c.Likes - c.Dislikes
}

// VoteKey identifies the row a single voter owns on a single votable.
type VoteKey struct {
	VoterID int
	Ref     models.Ref
}

func (k VoteKey) String() string {
	return fmt.Sprintf("vote:%d:%s:%d", k.VoterID, k.Ref.Type, k.Ref.ID)
}
