// AngelaMos | 2026
// dto.go

package auth

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// AuthResponse mirrors the user record plus a freshly issued bearer
// token, returned by register, login and the federated callback.
type AuthResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
	Role      string  `json:"role"`
	Token     string  `json:"token"`
}

type UserResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
	Role      string  `json:"role"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func toAuthResponse(account *Account, token string) *AuthResponse {
	return &AuthResponse{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		AvatarURL: account.AvatarURL,
		Role:      account.Role,
		Token:     token,
	}
}

func toUserResponse(account *Account) *UserResponse {
	return &UserResponse{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		AvatarURL: account.AvatarURL,
		Role:      account.Role,
	}
}
