package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownVotableType = errors.New("unknown votable type")

// VotableType identifies which kind of entity a vote points at.
type VotableType uint8

const (
	VotableArticle VotableType = iota + 1
	VotableFactCheck
	VotableComment
)

// VotableTypes lists every votable kind in a stable order.
var VotableTypes = []VotableType{VotableArticle, VotableFactCheck, VotableComment}

func (t VotableType) String() string {
	switch t {
	case VotableArticle:
		return "Article"
	case VotableFactCheck:
		return "FactCheck"
	case VotableComment:
		return "Comment"
	default:
		return fmt.Sprintf("VotableType(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the known votable kinds.
func (t VotableType) Valid() bool {
	return t >= VotableArticle && t <= VotableComment
}

// ParseVotableType accepts the names used in URLs ("Article", "FactCheck",
// "Comment") case-insensitively, plus the snake_case "fact_check".
func ParseVotableType(s string) (VotableType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "article":
		return VotableArticle, nil
	case "factcheck", "fact_check":
		return VotableFactCheck, nil
	case "comment":
		return VotableComment, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVotableType, s)
}

func (t VotableType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVotableType, uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *VotableType) UnmarshalText(b []byte) error {
	parsed, err := ParseVotableType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value stores the type by name so rows stay readable.
func (t VotableType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVotableType, uint8(t))
	}
	return t.String(), nil
}

func (t *VotableType) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	case nil:
		*t = 0
		return nil
	default:
		return fmt.Errorf("cannot scan %T into VotableType", src)
	}
}

// Ref is the composite key of a votable entity.
type Ref struct {
	Type VotableType `json:"type"`
	ID   int         `json:"id"`
}

func (r Ref) Valid() bool {
	return r.Type.Valid() && r.ID > 0
}

func (r Ref) String() string {
	return fmt.Sprintf("%s-%d", r.Type, r.ID)
}
