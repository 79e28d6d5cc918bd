// Package entities содержит доменные сущности и форматы обмена с REST бэкендом витрины.
package entities

// CredentialPair - пара токенов, выдаваемая при входе, регистрации и обновлении.
type CredentialPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IsAdmin      bool   `json:"is_admin"`
}

// Tokens - текущие сохраненные токены. Любой из них может отсутствовать.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// LoginRequest содержит данные для входа пользователя.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest содержит данные для регистрации пользователя.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	DOB       string `json:"dob"`
	IsAdmin   bool   `json:"is_admin"`
}

// RefreshRequest используется для обновления токенов и выхода.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// User - профиль текущего пользователя.
type User struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	DOB       string `json:"dob"`
}
