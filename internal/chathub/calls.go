package chathub

import (
	"errors"
	"sync"
	"time"

	"chatline/backend/internal/models"
	"chatline/backend/internal/storage"

	"github.com/rs/zerolog/log"
)

// ErrCallConflict is returned when a call id is already active.
var ErrCallConflict = errors.New("chathub: call id already active")

// CallSession is the ephemeral state of one live call. It references
// participants by identity only; it never owns their connections.
type CallSession struct {
	CallID    string
	ChatID    string
	Caller    string
	Receiver  string
	Kind      string
	Status    string
	StartedAt time.Time

	ringTimer *time.Timer
}

// CallCoordinator tracks live call sessions keyed by call id. Sessions
// have a lifecycle independent of chat rooms; a persisted Call row is
// written only when a session reaches a terminal status.
type CallCoordinator struct {
	mu    sync.Mutex
	calls map[string]*CallSession

	storage storage.Storage

	// ringTimeout is policy: zero means a ringing call never expires on
	// its own, otherwise an unanswered call is marked missed after it.
	ringTimeout time.Duration

	// onMissed is invoked outside the lock when a ring timeout fires.
	onMissed func(sess CallSession, duration int)
}

func NewCallCoordinator(s storage.Storage, ringTimeout time.Duration) *CallCoordinator {
	return &CallCoordinator{
		calls:       make(map[string]*CallSession),
		storage:     s,
		ringTimeout: ringTimeout,
	}
}

// SetMissedHandler installs the callback fired when a ringing call times
// out. Must be called before any Start.
func (cc *CallCoordinator) SetMissedHandler(fn func(sess CallSession, duration int)) {
	cc.onMissed = fn
}

// Start registers a new ringing session. Fails with ErrCallConflict when
// the call id is already active.
func (cc *CallCoordinator) Start(callID, chatID, caller, receiver, kind string) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if _, ok := cc.calls[callID]; ok {
		return ErrCallConflict
	}

	sess := &CallSession{
		CallID:    callID,
		ChatID:    chatID,
		Caller:    caller,
		Receiver:  receiver,
		Kind:      kind,
		Status:    models.CallStatusRinging,
		StartedAt: time.Now(),
	}
	if cc.ringTimeout > 0 {
		sess.ringTimer = time.AfterFunc(cc.ringTimeout, func() {
			cc.expireRinging(callID)
		})
	}
	cc.calls[callID] = sess
	return nil
}

// UpdateStatus moves an active session to status. An absent call id is a
// benign race (already ended or never started) and reports false without
// error. Answering stops the ring timer.
func (cc *CallCoordinator) UpdateStatus(callID, status string) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	sess, ok := cc.calls[callID]
	if !ok {
		return false
	}
	sess.Status = status
	if status != models.CallStatusRinging && sess.ringTimer != nil {
		sess.ringTimer.Stop()
		sess.ringTimer = nil
	}
	return true
}

// End removes the session, computes elapsed seconds and persists the
// terminal Call row. Reports false when the call id is not active.
func (cc *CallCoordinator) End(callID, status string) (int, bool) {
	cc.mu.Lock()
	sess, ok := cc.calls[callID]
	if !ok {
		cc.mu.Unlock()
		return 0, false
	}
	delete(cc.calls, callID)
	if sess.ringTimer != nil {
		sess.ringTimer.Stop()
	}
	cc.mu.Unlock()

	return cc.finish(sess, status), true
}

// EndAllFor ends every session identity participates in, for connection
// cleanup. Returns the ended sessions so the hub can notify the other
// participant.
func (cc *CallCoordinator) EndAllFor(identity string) []CallSession {
	cc.mu.Lock()
	var ended []*CallSession
	for callID, sess := range cc.calls {
		if sess.Caller == identity || sess.Receiver == identity {
			delete(cc.calls, callID)
			if sess.ringTimer != nil {
				sess.ringTimer.Stop()
			}
			ended = append(ended, sess)
		}
	}
	cc.mu.Unlock()

	out := make([]CallSession, 0, len(ended))
	for _, sess := range ended {
		cc.finish(sess, models.CallStatusEnded)
		out = append(out, *sess)
	}
	return out
}

// Active returns a copy of the live session for callID, if any.
func (cc *CallCoordinator) Active(callID string) (CallSession, bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if sess, ok := cc.calls[callID]; ok {
		return *sess, true
	}
	return CallSession{}, false
}

func (cc *CallCoordinator) expireRinging(callID string) {
	cc.mu.Lock()
	sess, ok := cc.calls[callID]
	if !ok || sess.Status != models.CallStatusRinging {
		cc.mu.Unlock()
		return
	}
	delete(cc.calls, callID)
	cc.mu.Unlock()

	duration := cc.finish(sess, models.CallStatusMissed)
	log.Info().Str("module", "chathub.calls").Str("call_id", callID).
		Msg("ringing call timed out, marked missed")
	if cc.onMissed != nil {
		cc.onMissed(*sess, duration)
	}
}

// finish persists the terminal row and returns the elapsed seconds.
func (cc *CallCoordinator) finish(sess *CallSession, status string) int {
	now := time.Now()
	duration := int(now.Sub(sess.StartedAt).Seconds())
	sess.Status = status

	record := &models.Call{
		CallID:           sess.CallID,
		ChatID:           sess.ChatID,
		CallerUsername:   sess.Caller,
		ReceiverUsername: sess.Receiver,
		Kind:             sess.Kind,
		Status:           status,
		StartedAt:        sess.StartedAt,
		EndedAt:          &now,
		DurationSeconds:  duration,
	}
	if err := cc.storage.SaveCall(record); err != nil {
		log.Error().Err(err).Str("module", "chathub.calls").Str("call_id", sess.CallID).
			Msg("failed to persist call record")
	}
	return duration
}
