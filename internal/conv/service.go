package conv

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/chatmultimodel/backend/internal/apperr"
	"github.com/chatmultimodel/backend/internal/logger"
)

// Service is the surface the external runtime calls into: the thread
// directory (list/get/create/rename/delete), the message recorder (Append)
// and the resume protocol (Resume).
type Service struct {
	repo          *Repo
	log           *logger.Logger
	contextWindow int
}

func NewService(repo *Repo, log *logger.Logger, contextWindow int) *Service {
	if contextWindow <= 0 {
		contextWindow = 20
	}
	return &Service{repo: repo, log: log.With("service", "conv"), contextWindow: contextWindow}
}

func (s *Service) storeErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	s.log.Error("store failure", "op", op, "err", err)
	return apperr.Persistence(err)
}

// Create registers a new conversation under an external session id. The id
// is assigned once and immutable; a taken id reports a conflict.
func (s *Service) Create(ctx context.Context, userID uint64, sessionID, title string) (*Conversation, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperr.Validationf("session id required")
	}
	if title == "" {
		title = DefaultTitle
	}

	if _, err := s.repo.GetBySessionID(ctx, sessionID); err == nil {
		return nil, apperr.ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.storeErr("create", err)
	}

	now := time.Now()
	c := &Conversation{
		SessionID:      &sessionID,
		UserID:         userID,
		Title:          title,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	if err := s.repo.CreateConversation(ctx, c); err != nil {
		// The unique index closes the window between the lookup above and
		// the insert under concurrent creates.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.ErrConflict
		}
		return nil, s.storeErr("create", err)
	}
	return c, nil
}

// Resolve maps an external session id to its conversation, enforcing
// ownership. Authorization lives here, not in the callers.
func (s *Service) Resolve(ctx context.Context, sessionID string, requestingUserID uint64) (*Conversation, error) {
	c, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, s.storeErr("resolve", err)
	}
	if c.UserID != requestingUserID {
		return nil, apperr.ErrUnauthorized
	}
	return c, nil
}

// Get resolves an external session id to the full record: conversation plus
// every message in sequence order.
func (s *Service) Get(ctx context.Context, sessionID string, requestingUserID uint64) (*Conversation, []Message, error) {
	c, err := s.Resolve(ctx, sessionID, requestingUserID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.repo.ListMessages(ctx, c.ID)
	if err != nil {
		return nil, nil, s.storeErr("get", err)
	}
	return c, msgs, nil
}

// List pages a user's conversations. cursor is the opaque string returned by
// a previous call, empty for the first page. The returned cursor is empty
// once the final page has been served.
func (s *Service) List(ctx context.Context, userID uint64, cursor string, pageSize int) ([]Summary, string, error) {
	cur, ok := DecodeCursor(cursor)
	if !ok {
		return nil, "", apperr.Validationf("malformed cursor")
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	items, err := s.repo.ListSummaries(ctx, userID, cur, pageSize)
	if err != nil {
		return nil, "", s.storeErr("list", err)
	}

	next := ""
	if len(items) == pageSize {
		last := items[len(items)-1]
		next = EncodeCursor(Cursor{LastActivityAt: last.LastActivityAt, ID: last.ID})
	}
	return items, next, nil
}

// Rename updates the display title only. Recency is untouched.
func (s *Service) Rename(ctx context.Context, id uint64, newTitle string) error {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return apperr.Validationf("title required")
	}
	affected, err := s.repo.UpdateTitle(ctx, id, newTitle)
	if err != nil {
		return s.storeErr("rename", err)
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Delete removes the conversation and its messages atomically. Deleting an
// already-absent session id reports not-found rather than succeeding
// silently, so callers can tell "already gone" from "just deleted".
func (s *Service) Delete(ctx context.Context, sessionID string, requestingUserID uint64) error {
	c, err := s.Resolve(ctx, sessionID, requestingUserID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteConversation(ctx, c.ID); err != nil {
		return s.storeErr("delete", err)
	}
	return nil
}

// Append records one turn. The sequence number and the recency bump commit
// in the same transaction as the insert.
func (s *Service) Append(ctx context.Context, conversationID uint64, role, content string) (*Message, error) {
	if !ValidRole(role) {
		return nil, apperr.Validationf("unrecognized role %q", role)
	}
	msg, err := s.repo.AppendMessage(ctx, conversationID, role, content)
	if err != nil {
		return nil, s.storeErr("append", err)
	}
	return msg, nil
}

// Resume rebuilds session state at session start: the unbounded display view
// and the context view, a strict suffix of at most the configured window,
// never reordered or deduplicated. Resume never invents a conversation; a
// missing session id reports not-found and the runtime decides whether to
// call Create.
func (s *Service) Resume(ctx context.Context, sessionID string, requestingUserID uint64) (*Resumed, error) {
	c, msgs, err := s.Get(ctx, sessionID, requestingUserID)
	if err != nil {
		return nil, err
	}

	contextView := msgs
	if len(msgs) > s.contextWindow {
		contextView = msgs[len(msgs)-s.contextWindow:]
	}

	return &Resumed{Conversation: c, Display: msgs, Context: contextView}, nil
}
