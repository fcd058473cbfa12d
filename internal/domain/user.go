package domain

import "time"

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// UserProfile guarda los datos opcionales del registro.
type UserProfile struct {
	UserID  string `json:"user_id"`
	Website string `json:"website,omitempty"`
	Picture string `json:"picture,omitempty"` // ruta relativa al directorio de media
}
