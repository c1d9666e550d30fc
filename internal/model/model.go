// Package model defines the core goal-tracking data types.
package model

import "time"

// GoalCategory distinguishes skill-building goals from outcome goals.
type GoalCategory string

const (
	CategoryLearning    GoalCategory = "learning"
	CategoryAchievement GoalCategory = "achievement"
)

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	StatusNotStarted GoalStatus = "not_started"
	StatusInProgress GoalStatus = "in_progress"
	StatusCompleted  GoalStatus = "completed"
)

// Goal is a user-defined objective. It references its spaces by id but does
// not own them; spaces survive goal soft-deletion.
type Goal struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Category    GoalCategory `json:"category"`
	Status      GoalStatus   `json:"status"`
	Progress    int          `json:"progress"` // 0-100, freely settable
	SpaceIDs    []string     `json:"space_ids,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	DeletedAt   *time.Time   `json:"deleted_at,omitempty"`
}

// Mentor is the AI persona assigned to a space. The System field is the full
// system instruction sent with every generation request for that space.
type Mentor struct {
	Name         string   `json:"name"`
	Expertise    []string `json:"expertise"`
	Personality  string   `json:"personality"`
	Introduction string   `json:"introduction,omitempty"`
	System       string   `json:"system"`
}

// Palette is the three color tokens a space renders with.
type Palette struct {
	Main      string `json:"main"`
	Secondary string `json:"secondary"`
	Tertiary  string `json:"tertiary"`
}

// Space is a goal-scoped learning unit. It exclusively owns its modules and
// its to-do list; checked state for to-dos lives in the state overlay, keyed
// by index into ToDoList.
type Space struct {
	ID            string       `json:"id"`
	GoalID        string       `json:"goal_id,omitempty"`
	UserID        string       `json:"user_id"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Category      GoalCategory `json:"category"`
	Mentor        Mentor       `json:"mentor"`
	Objectives    []string     `json:"objectives,omitempty"`
	Prerequisites []string     `json:"prerequisites,omitempty"`
	ToDoList      []string     `json:"to_do_list,omitempty"`
	Plan          string       `json:"plan,omitempty"`
	Research      string       `json:"research,omitempty"`
	MindMap       string       `json:"mind_map,omitempty"`
	Palette       Palette      `json:"palette"`
	Progress      int          `json:"progress"`
	OrderIndex    int          `json:"order_index"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Module is an ordered content unit within a space.
type Module struct {
	ID          string    `json:"id"`
	SpaceID     string    `json:"space_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content,omitempty"` // markdown
	OrderIndex  int       `json:"order_index"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Role tags a chat message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one entry in a space's conversation history.
type ChatMessage struct {
	ID        string    `json:"id"`
	SpaceID   string    `json:"space_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is a structured to-do extracted from a generation response.
type Task struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// SiteInfo holds client-observed environment facts used for personalization
// only; never authoritative.
type SiteInfo struct {
	DeviceClass string `json:"device_class,omitempty"`
	Locale      string `json:"locale,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Connection  string `json:"connection,omitempty"`
}

// ValidCategories are the allowed goal/space categories.
var ValidCategories = map[GoalCategory]bool{
	CategoryLearning:    true,
	CategoryAchievement: true,
}

// ValidStatuses are the allowed goal statuses.
var ValidStatuses = map[GoalStatus]bool{
	StatusNotStarted: true,
	StatusInProgress: true,
	StatusCompleted:  true,
}

// ClampProgress bounds a progress value to [0, 100].
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
