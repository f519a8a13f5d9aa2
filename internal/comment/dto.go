// AngelaMos | 2026
// dto.go

package comment

import "time"

type CreateCommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=5000"`
}

type CommentResponse struct {
	ID           int64     `json:"id"`
	TaskID       int64     `json:"task_id"`
	UserID       int64     `json:"user_id"`
	Body         string    `json:"body"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar *string   `json:"author_avatar"`
	CreatedAt    time.Time `json:"created_at"`
}

func toCommentResponse(c *Comment) *CommentResponse {
	return &CommentResponse{
		ID:           c.ID,
		TaskID:       c.TaskID,
		UserID:       c.UserID,
		Body:         c.Body,
		AuthorName:   c.AuthorName,
		AuthorAvatar: c.AuthorAvatar,
		CreatedAt:    c.CreatedAt,
	}
}

func toCommentResponses(comments []Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, *toCommentResponse(&comments[i]))
	}
	return out
}
