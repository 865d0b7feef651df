package conv

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cursor marks the page boundary of a thread listing: the last-activity
// timestamp and internal id of the final item returned. Opaque to callers.
type Cursor struct {
	LastActivityAt time.Time
	ID             uint64
}

// EncodeCursor renders a cursor as a URL-safe base64 string.
func EncodeCursor(c Cursor) string {
	if c.ID == 0 {
		return ""
	}
	raw := fmt.Sprintf("%d:%d", c.LastActivityAt.UnixNano(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor issued by EncodeCursor. An empty string is a
// valid "first page" cursor; anything else malformed reports ok=false.
func DecodeCursor(raw string) (Cursor, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Cursor{}, true
	}
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return Cursor{}, false
	}
	parts := strings.SplitN(string(b), ":", 2)
	if len(parts) != 2 {
		return Cursor{}, false
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Cursor{}, false
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil || id == 0 {
		return Cursor{}, false
	}
	return Cursor{LastActivityAt: time.Unix(0, nanos), ID: id}, true
}
