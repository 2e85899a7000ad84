package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ErrPermissionNotGranted is returned by Show before permission has been
// granted.
var ErrPermissionNotGranted = errors.New("notification permission not granted")

// PubSubNotifier publishes notifications to a Redis channel so any
// subscribed frontend or relay can surface them. Permission starts at
// default and resolves on RequestPermission: a reachable Redis grants it,
// a failed ping denies it.
type PubSubNotifier struct {
	client  *redis.Client
	channel string

	mu    sync.Mutex
	state Permission
}

// NewPubSubNotifier creates a notifier publishing to channel.
func NewPubSubNotifier(client *redis.Client, channel string) *PubSubNotifier {
	if client == nil {
		panic("notify.NewPubSubNotifier: client is nil")
	}
	return &PubSubNotifier{client: client, channel: channel, state: PermissionDefault}
}

func (p *PubSubNotifier) Permission() Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// RequestPermission probes the Redis connection and resolves the
// permission state. It can be called again after a denial.
func (p *PubSubNotifier) RequestPermission(ctx context.Context) (Permission, error) {
	if err := p.client.Ping(ctx).Err(); err != nil {
		p.setState(PermissionDenied)
		return PermissionDenied, err
	}
	p.setState(PermissionGranted)
	return PermissionGranted, nil
}

// Show publishes the notification as JSON.
func (p *PubSubNotifier) Show(ctx context.Context, n Notification) error {
	if p.Permission() != PermissionGranted {
		return ErrPermissionNotGranted
	}
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, data).Err()
}

func (p *PubSubNotifier) setState(s Permission) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}
