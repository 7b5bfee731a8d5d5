package order

// ==================== REQUEST STRUCTS ====================

type PostMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

// ==================== EVENT PAYLOADS ====================

const (
	EventShellsCreated = "ORDER_SHELLS_CREATED"
	AggregateShell     = "ORDER_SHELL"
)

type ShellsCreatedPayload struct {
	UserID   string   `json:"user_id"`
	OrderIDs []string `json:"order_ids"`
}
