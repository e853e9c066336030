// README: Status-change audit events recorded for admin operations.
package audit

import "time"

type Event struct {
	ID         int64     `json:"id"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	Actor      string    `json:"actor"`
	CreatedAt  time.Time `json:"createdAt"`
}
