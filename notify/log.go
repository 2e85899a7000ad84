package notify

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// LogNotifier writes notifications to the log. It is the fallback sink
// when no Redis connection is configured.
type LogNotifier struct {
	logger *log.Logger

	mu    sync.Mutex
	state Permission
}

// NewLogNotifier creates a notifier logging through logger.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &LogNotifier{logger: logger, state: PermissionDefault}
}

func (l *LogNotifier) Permission() Permission {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// RequestPermission always grants; the log is always writable.
func (l *LogNotifier) RequestPermission(ctx context.Context) (Permission, error) {
	l.mu.Lock()
	l.state = PermissionGranted
	l.mu.Unlock()
	return PermissionGranted, nil
}

func (l *LogNotifier) Show(ctx context.Context, n Notification) error {
	if l.Permission() != PermissionGranted {
		return ErrPermissionNotGranted
	}
	l.logger.WithFields(log.Fields{"title": n.Title, "body": n.Body}).Info("notification")
	return nil
}
