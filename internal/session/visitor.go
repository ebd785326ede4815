package session

import (
	"sync/atomic"
	"time"

	"codeberg.org/newsdesk/web/internal/posts"
)

// everything the server keeps for one browser
type Visitor struct {
	ID       string
	Identity Identity
	Session  *Session
	Profile  *posts.View
	Tasks    *Tasks

	lastActivity atomic.Int64
}

// marks the visitor as active
func (v *Visitor) Touch() {
	v.lastActivity.Store(time.Now().UnixNano())
}

func (v *Visitor) LastActivity() time.Time {
	return time.Unix(0, v.lastActivity.Load())
}

func (v *Visitor) dispose() {
	v.Session.Dispose()
	v.Tasks.Close()
}
