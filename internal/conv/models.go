package conv

import "time"

// Role values accepted for a message. Anything else is rejected.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// DefaultTitle is the placeholder assigned when the runtime supplies none.
// Titles only change through Rename.
const DefaultTitle = "New conversation"

// Conversation maps an external session id (minted by the UI runtime,
// unique when present, immutable after creation) to a durable record.
type Conversation struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID      *string   `gorm:"type:varchar(64);uniqueIndex" json:"session_id"`
	UserID         uint64    `gorm:"index;not null" json:"-"`
	Title          string    `gorm:"type:varchar(255);not null" json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `gorm:"index;not null" json:"last_activity_at"`
}

func (Conversation) TableName() string { return "conversations" }

// Message is immutable once written. Seq is the per-conversation monotonic
// counter that defines canonical order; CreatedAt is informational only and
// two messages may share a timestamp.
type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64    `gorm:"not null;index:uniq_conv_seq,unique,priority:1" json:"conversation_id"`
	Seq            int64     `gorm:"not null;index:uniq_conv_seq,unique,priority:2" json:"seq"`
	Role           string    `gorm:"type:varchar(16);not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Message) TableName() string { return "messages" }

// Summary is one row of the thread list.
type Summary struct {
	ID             uint64    `json:"id"`
	SessionID      *string   `json:"session_id"`
	Title          string    `json:"title"`
	MessageCount   int64     `json:"message_count"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// Resumed carries the two views built at session start: the unbounded
// display history and the bounded context window handed to inference.
// Context is a strict suffix of Display by sequence number.
type Resumed struct {
	Conversation *Conversation `json:"conversation"`
	Display      []Message     `json:"display"`
	Context      []Message     `json:"context"`
}
