package models

const (
	TaskPending = "pending"
	TaskDone    = "done"
)

// DateLayout is the calendar-date form used for due dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

type Task struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Status    string `json:"status"`
	DueDate   string `json:"due_date"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

type CreateTaskRequest struct {
	Title   string `json:"title"`
	DueDate string `json:"due_date"`
}
