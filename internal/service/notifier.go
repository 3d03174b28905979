package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message for the operator, the server-side toast.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "notice")}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notice) {
	level := slog.LevelInfo
	switch n.Level {
	case NoticeError:
		level = slog.LevelError
	case NoticeWarning:
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, n.Message, "level", string(n.Level))
}

// NoticeLog keeps the most recent notices of one session.
type NoticeLog struct {
	mu      sync.Mutex
	notices []Notice
	limit   int
}

func NewNoticeLog(limit int) *NoticeLog {
	if limit <= 0 {
		limit = 20
	}
	return &NoticeLog{limit: limit}
}

func (l *NoticeLog) Notify(_ context.Context, n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
	if len(l.notices) > l.limit {
		l.notices = l.notices[len(l.notices)-l.limit:]
	}
}

func (l *NoticeLog) Recent() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Notice(nil), l.notices...)
}

// Latest returns the newest notice, if any.
func (l *NoticeLog) Latest() (Notice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.notices) == 0 {
		return Notice{}, false
	}
	return l.notices[len(l.notices)-1], true
}

type multiNotifier []Notifier

func (m multiNotifier) Notify(ctx context.Context, n Notice) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}

// Notifiers fans a notice out to every non-nil notifier.
func Notifiers(ns ...Notifier) Notifier {
	return multiNotifier(ns)
}

func notify(ctx context.Context, n Notifier, level NoticeLevel, msg string) {
	if n == nil {
		return
	}
	n.Notify(ctx, Notice{Level: level, Message: msg, At: time.Now()})
}
