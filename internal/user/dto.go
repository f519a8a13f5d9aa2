// AngelaMos | 2026
// dto.go

package user

import "time"

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=USER ADMIN"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url"`
	Role      string    `json:"role"`
	Provider  *string   `json:"provider,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Role:      string(u.Role),
		Provider:  u.Provider,
		CreatedAt: u.CreatedAt,
	}
}

func toUserResponses(users []User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}
