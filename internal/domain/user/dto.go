// internal/domain/user/dto.go
package user

import (
	"chronoshop/internal/domain/shop"
)

// RegisterRequest for account creation
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

// LoginRequest for credential exchange
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the token pair plus the user record
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// RefreshRequest exchanges a refresh token for a new access token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshResponse carries the replacement access token
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// UpdateUserRequest is the partial user-update payload. Nil fields are left
// untouched by the backend; a non-nil field replaces the whole collection.
type UpdateUserRequest struct {
	FullName *string               `json:"full_name,omitempty"`
	Cart     *[]shop.CartLine      `json:"cart,omitempty"`
	Wishlist *[]shop.WishlistEntry `json:"wishlist,omitempty"`
}
