package form

import "sync"

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Notices collects notices so an HTTP handler can return them with the
// response.
type Notices struct {
	mu    sync.Mutex
	items []Notice
}

func (n *Notices) Success(msg string) { n.add(NoticeSuccess, msg) }

func (n *Notices) Error(msg string) { n.add(NoticeError, msg) }

func (n *Notices) add(level NoticeLevel, msg string) {
	n.mu.Lock()
	n.items = append(n.items, Notice{Level: level, Message: msg})
	n.mu.Unlock()
}

func (n *Notices) All() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.items...)
}
