package domain

// Winner is one entry of an announced winner payload.
// Persisted as JSONB on the challenge row and embedded in notification data.
type Winner struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Points   int    `json:"points"`
}
