// Package notify delivers password reset notices out of band from the
// request that triggered them.
package notify

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultQueueSize = 256

	minRecipientIdleTTL = 10 * time.Minute
)

// PasswordResetNotice is one reset request for a registered account.
type PasswordResetNotice struct {
	UserID      string
	Email       string
	RequestedAt time.Time
}

// Mailer sends a reset notice to its recipient.
type Mailer interface {
	SendPasswordReset(ctx context.Context, notice PasswordResetNotice) error
}

// LogMailer records notices in the server log instead of sending mail.
type LogMailer struct {
	Logger *slog.Logger
}

// SendPasswordReset implements Mailer.
func (m LogMailer) SendPasswordReset(ctx context.Context, notice PasswordResetNotice) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "password reset requested",
		"user_id", notice.UserID,
		"email", notice.Email,
		"requested_at", notice.RequestedAt,
	)
	return nil
}

type recipient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ResetNotifier queues reset notices and hands them to a Mailer from a single
// worker. Each recipient gets at most one notice per interval; extra notices
// are dropped.
type ResetNotifier struct {
	mailer Mailer
	queue  chan PasswordResetNotice
	every  rate.Limit
	idle   time.Duration
	now    func() time.Time

	mu         sync.Mutex
	recipients map[string]*recipient
}

// NewResetNotifier creates a notifier. A non-positive interval disables pacing.
func NewResetNotifier(mailer Mailer, interval time.Duration, queueSize int) *ResetNotifier {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	every := rate.Inf
	if interval > 0 {
		every = rate.Every(interval)
	}

	return &ResetNotifier{
		mailer:     mailer,
		queue:      make(chan PasswordResetNotice, queueSize),
		every:      every,
		idle:       max(interval, minRecipientIdleTTL),
		now:        time.Now,
		recipients: make(map[string]*recipient),
	}
}

// Enqueue adds a notice without blocking. It returns false when the queue is full.
func (n *ResetNotifier) Enqueue(notice PasswordResetNotice) bool {
	select {
	case n.queue <- notice:
		return true
	default:
		slog.Warn("reset notice queue full, dropping notice", "user_id", notice.UserID)
		return false
	}
}

// Run delivers queued notices until ctx is done.
func (n *ResetNotifier) Run(ctx context.Context) {
	ticker := time.NewTicker(n.idle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.cleanup()
		case notice := <-n.queue:
			n.deliver(ctx, notice)
		}
	}
}

func (n *ResetNotifier) deliver(ctx context.Context, notice PasswordResetNotice) {
	if !n.allow(notice.Email) {
		slog.WarnContext(ctx, "reset notice throttled", "user_id", notice.UserID)
		return
	}

	if err := n.mailer.SendPasswordReset(ctx, notice); err != nil {
		slog.ErrorContext(ctx, "reset notice delivery failed", "user_id", notice.UserID, "error", err)
	}
}

func (n *ResetNotifier) allow(email string) bool {
	key := strings.ToLower(strings.TrimSpace(email))
	now := n.now()

	n.mu.Lock()
	defer n.mu.Unlock()

	r, exists := n.recipients[key]
	if !exists {
		r = &recipient{limiter: rate.NewLimiter(n.every, 1)}
		n.recipients[key] = r
	}
	r.lastSeen = now

	return r.limiter.AllowN(now, 1)
}

func (n *ResetNotifier) cleanup() {
	now := n.now()

	n.mu.Lock()
	defer n.mu.Unlock()

	for key, r := range n.recipients {
		if now.Sub(r.lastSeen) > n.idle {
			delete(n.recipients, key)
		}
	}
}
