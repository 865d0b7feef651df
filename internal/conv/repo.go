package conv

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) CreateConversation(ctx context.Context, c *Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repo) GetBySessionID(ctx context.Context, sessionID string) (*Conversation, error) {
	var c Conversation
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) GetByID(ctx context.Context, id uint64) (*Conversation, error) {
	var c Conversation
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// AppendMessage inserts the next message of a conversation and bumps its
// recency. The sequence number is computed inside the same transaction as
// the insert, so concurrent appends to one conversation are serialized by
// the store rather than an application lock.
func (r *Repo) AppendMessage(ctx context.Context, conversationID uint64, role, content string) (*Message, error) {
	var msg Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c Conversation
		if err := tx.Where("id = ?", conversationID).Take(&c).Error; err != nil {
			return err
		}

		var maxSeq int64
		if err := tx.Model(&Message{}).
			Select("COALESCE(MAX(seq), 0)").
			Where("conversation_id = ?", conversationID).
			Scan(&maxSeq).Error; err != nil {
			return err
		}

		now := time.Now()
		msg = Message{
			ConversationID: conversationID,
			Seq:            maxSeq + 1,
			Role:           role,
			Content:        content,
			CreatedAt:      now,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}

		return tx.Model(&Conversation{}).
			Where("id = ?", conversationID).
			Update("last_activity_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns the full log in canonical (seq ASC) order.
func (r *Repo) ListMessages(ctx context.Context, conversationID uint64) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("seq ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListSummaries pages a user's conversations newest-activity first, internal
// id descending on ties. The keyset predicate keeps later pages stable for
// boundaries already passed even when new conversations appear between calls.
func (r *Repo) ListSummaries(ctx context.Context, userID uint64, cursor Cursor, limit int) ([]Summary, error) {
	q := r.db.WithContext(ctx).
		Model(&Conversation{}).
		Select("conversations.id, conversations.session_id, conversations.title, conversations.last_activity_at, "+
			"(SELECT COUNT(*) FROM messages WHERE messages.conversation_id = conversations.id) AS message_count").
		Where("conversations.user_id = ?", userID)

	if cursor.ID != 0 {
		q = q.Where(
			"conversations.last_activity_at < ? OR (conversations.last_activity_at = ? AND conversations.id < ?)",
			cursor.LastActivityAt, cursor.LastActivityAt, cursor.ID,
		)
	}

	var out []Summary
	if err := q.
		Order("conversations.last_activity_at DESC").
		Order("conversations.id DESC").
		Limit(limit).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTitle touches the title only; last_activity_at stays as-is so a
// rename never reorders the thread list.
func (r *Repo) UpdateTitle(ctx context.Context, id uint64, title string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Conversation{}).
		Where("id = ?", id).
		Update("title", title)
	return res.RowsAffected, res.Error
}

// DeleteConversation removes the conversation and its messages atomically.
func (r *Repo) DeleteConversation(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&Message{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Conversation{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
