package todoist

// Task is an active Todoist task.
type Task struct {
	ID          string   `json:"id"`
	Content     string   `json:"content"`
	Description string   `json:"description,omitempty"`
	ProjectID   string   `json:"project_id,omitempty"`
	Priority    int      `json:"priority"`
	Labels      []string `json:"labels,omitempty"`
	Due         *Due     `json:"due,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// Due is a task due date. Datetime is set only for tasks with a time.
type Due struct {
	Date      string `json:"date"`
	String    string `json:"string,omitempty"`
	Datetime  string `json:"datetime,omitempty"`
	Recurring bool   `json:"is_recurring,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// NewTask is the payload for creating a task.
type NewTask struct {
	Content     string   `json:"content"`
	Description string   `json:"description,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	DueString   string   `json:"due_string,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	ProjectID   string   `json:"project_id,omitempty"`
}

// CompletedTask is an entry of the completed items log.
type CompletedTask struct {
	ID          string `json:"id"`
	TaskID      string `json:"task_id"`
	Content     string `json:"content"`
	ProjectID   string `json:"project_id,omitempty"`
	CompletedAt string `json:"completed_at"`
}
