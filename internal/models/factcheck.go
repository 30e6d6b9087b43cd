package models

import "time"

const (
	MinFactCheckLevel = 0
	MaxFactCheckLevel = 4
)

type FactCheck struct {
	ID             int       `gorm:"primaryKey" json:"id"`
	ArticleID      int       `gorm:"not null;index" json:"article_id"`
	UserID         *int      `gorm:"index" json:"user_id"`
	User           *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Content        string    `gorm:"size:2000" json:"content"`
	Source         string    `gorm:"size:150" json:"source"`
	FactCheckURL   string    `gorm:"size:255" json:"fact_check_url"`
	FactCheckLevel int       `gorm:"not null;default:0" json:"fact_check_level"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (f FactCheck) Ref() Ref {
	return Ref{Type: VotableFactCheck, ID: f.ID}
}

// CreateFactCheckRequest uses a pointer level so a missing level is told apart from 0.
type CreateFactCheckRequest struct {
	ArticleID      int    `json:"article_id" binding:"required,gt=0"`
	Content        string `json:"content" binding:"max=2000"`
	Source         string `json:"source" binding:"max=150"`
	FactCheckURL   string `json:"fact_check_url" binding:"omitempty,url,max=255"`
	FactCheckLevel *int   `json:"fact_check_level" binding:"required,min=0,max=4"`
}
