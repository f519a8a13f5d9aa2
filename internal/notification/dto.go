// AngelaMos | 2026
// dto.go

package notification

import "time"

type NotificationResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	TaskID    *int64    `json:"task_id"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationResponses(notifications []Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, NotificationResponse{
			ID:        n.ID,
			Type:      string(n.Type),
			Message:   n.Message,
			TaskID:    n.TaskID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}
