package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/emotion_diary/internal/events"
	"github.com/Skotchmaster/emotion_diary/internal/metrics"
	"github.com/Skotchmaster/emotion_diary/pkg/logging"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many attempts")
	ErrUnavailable        = errors.New("dependency unavailable")
)

// RetryError carries how long a rate-limited caller should wait.
type RetryError struct {
	After time.Duration
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("%v: retry after %s", ErrRateLimited, e.After)
}

func (e *RetryError) Is(target error) bool { return target == ErrRateLimited }

// publish is best effort. A broker failure never fails the request.
func publish(ctx context.Context, pub events.Publisher, topic string, e events.Event) {
	if pub == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := pub.Publish(pctx, topic, e)
	metrics.ObservePublish(topic, err)
	if err != nil {
		logging.FromContext(ctx).Error("publish_failed", "topic", topic, "type", e.Type, "error", err)
	}
}
