// AngelaMos | 2026
// dto.go

package project

import "time"

type CreateProjectRequest struct {
	Name        string     `json:"name"        validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	MemberIDs   []int64    `json:"member_ids"  validate:"max=100,dive,gt=0"`
}

type AddMemberRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type MemberResponse struct {
	UserID    int64   `json:"user_id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

type ProjectResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	StartDate   *time.Time       `json:"start_date"`
	EndDate     *time.Time       `json:"end_date"`
	Progress    float64          `json:"progress"`
	CreatedBy   int64            `json:"created_by"`
	Members     []MemberResponse `json:"members,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func toProjectResponse(p *Project, members []Member) *ProjectResponse {
	resp := &ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Progress:    p.Progress,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	for _, m := range members {
		resp.Members = append(resp.Members, MemberResponse{
			UserID:    m.UserID,
			Name:      m.Name,
			Email:     m.Email,
			AvatarURL: m.AvatarURL,
		})
	}

	return resp
}

func toProjectResponses(projects []Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, *toProjectResponse(&projects[i], nil))
	}
	return out
}
