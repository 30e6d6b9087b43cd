package models

import "time"

// Vote is one user's current stance on one votable. A missing row means no vote.
type Vote struct {
	ID          int         `gorm:"primaryKey" json:"id"`
	UserID      int         `gorm:"not null;uniqueIndex:idx_votes_voter_votable,priority:1" json:"user_id"`
	VotableType VotableType `gorm:"type:varchar(16);not null;uniqueIndex:idx_votes_voter_votable,priority:2;index:idx_votes_votable,priority:1" json:"votable_type"`
	VotableID   int         `gorm:"not null;uniqueIndex:idx_votes_voter_votable,priority:3;index:idx_votes_votable,priority:2" json:"votable_id"`
	Value       int         `gorm:"not null;check:chk_votes_value,value IN (-1, 1)" json:"value"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (v Vote) Ref() Ref {
	return Ref{Type: v.VotableType, ID: v.VotableID}
}
