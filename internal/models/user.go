package models

import "time"

type User struct {
	ID           int       `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:64;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,max=30"`
	Email    string `json:"email" binding:"required,email,max=64"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	Username             string `json:"username" binding:"omitempty,max=30"`
	Email                string `json:"email" binding:"omitempty,email,max=64"`
	Password             string `json:"password" binding:"omitempty,max=72"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
