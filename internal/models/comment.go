package models

import "time"

type Comment struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"size:1000;not null" json:"content"`
	ArticleID int       `gorm:"not null;index" json:"article_id"`
	UserID    *int      `gorm:"index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c Comment) Ref() Ref {
	return Ref{Type: VotableComment, ID: c.ID}
}

// DisplayName is the author's username, or "deleted" once the author is gone.
func (c Comment) DisplayName() string {
	if c.User == nil {
		return "deleted"
	}
	return c.User.Username
}

type CreateCommentRequest struct {
	ArticleID int    `json:"article_id" binding:"required,gt=0"`
	Content   string `json:"content" binding:"required,max=1000"`
}
