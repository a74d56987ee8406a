package services

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	// TypingWriteWindow bounds typing presence writes to one per chat/user
	// per window
	TypingWriteWindow = 800 * time.Millisecond
	// TypingExpiry clears a typing flag that stops receiving pings
	TypingExpiry = 3 * time.Second
	// ReadReceiptWindow coalesces read-receipt writes per chat/user
	ReadReceiptWindow = time.Second
)

// TypingTracker debounces typing presence pings. At most one remote write
// happens per TypingWriteWindow, and a client-side expiry timer clears the
// flag TypingExpiry after the last ping even if the client never sends an
// explicit stop.
type TypingTracker struct {
	write func(ctx context.Context, chatID, userID string, typing bool) error

	mu        sync.Mutex
	lastWrite map[string]time.Time
	timers    map[string]*time.Timer
	now       func() time.Time
	expiry    time.Duration
}

func NewTypingTracker(write func(ctx context.Context, chatID, userID string, typing bool) error) *TypingTracker {
	return &TypingTracker{
		write:     write,
		lastWrite: make(map[string]time.Time),
		timers:    make(map[string]*time.Timer),
		now:       time.Now,
		expiry:    TypingExpiry,
	}
}

// Ping records typing input. The expiry timer is refreshed on every ping;
// the remote flag is written only for the first ping in any write window.
func (t *TypingTracker) Ping(ctx context.Context, chatID, userID string) {
	key := chatID + "|" + userID

	t.mu.Lock()
	if timer, ok := t.timers[key]; ok {
		timer.Stop()
	}
	t.timers[key] = time.AfterFunc(t.expiry, func() {
		t.expire(chatID, userID)
	})

	shouldWrite := t.now().Sub(t.lastWrite[key]) >= TypingWriteWindow
	if shouldWrite {
		t.lastWrite[key] = t.now()
	}
	t.mu.Unlock()

	if shouldWrite {
		if err := t.write(ctx, chatID, userID, true); err != nil {
			log.Printf("⚠️ Failed to write typing flag for chat %s: %v", chatID, err)
		}
	}
}

// Stop clears the typing flag immediately (e.g. on message send)
func (t *TypingTracker) Stop(ctx context.Context, chatID, userID string) {
	key := chatID + "|" + userID

	t.mu.Lock()
	if timer, ok := t.timers[key]; ok {
		timer.Stop()
		delete(t.timers, key)
	}
	delete(t.lastWrite, key)
	t.mu.Unlock()

	if err := t.write(ctx, chatID, userID, false); err != nil {
		log.Printf("⚠️ Failed to clear typing flag for chat %s: %v", chatID, err)
	}
}

func (t *TypingTracker) expire(chatID, userID string) {
	key := chatID + "|" + userID

	t.mu.Lock()
	delete(t.timers, key)
	delete(t.lastWrite, key)
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.write(ctx, chatID, userID, false); err != nil {
		log.Printf("⚠️ Failed to expire typing flag for chat %s: %v", chatID, err)
	}
}

// ReadReceiptDebouncer coalesces read-receipt writes to at most one per
// window per chat/user. The first mark in a window writes immediately; later
// marks within the window are folded into one trailing write so the final
// receipt is never lost.
type ReadReceiptDebouncer struct {
	write func(ctx context.Context, chatID, userID string) error

	mu        sync.Mutex
	lastWrite map[string]time.Time
	pending   map[string]*time.Timer
	now       func() time.Time
}

func NewReadReceiptDebouncer(write func(ctx context.Context, chatID, userID string) error) *ReadReceiptDebouncer {
	return &ReadReceiptDebouncer{
		write:     write,
		lastWrite: make(map[string]time.Time),
		pending:   make(map[string]*time.Timer),
		now:       time.Now,
	}
}

// Mark records that the user has seen the chat
func (r *ReadReceiptDebouncer) Mark(ctx context.Context, chatID, userID string) {
	key := chatID + "|" + userID

	r.mu.Lock()
	elapsed := r.now().Sub(r.lastWrite[key])
	if elapsed >= ReadReceiptWindow {
		r.lastWrite[key] = r.now()
		r.mu.Unlock()

		if err := r.write(ctx, chatID, userID); err != nil {
			log.Printf("⚠️ Failed to write read receipt for chat %s: %v", chatID, err)
		}
		return
	}

	// Already wrote recently: fold this mark into one trailing write
	if _, ok := r.pending[key]; !ok {
		r.pending[key] = time.AfterFunc(ReadReceiptWindow-elapsed, func() {
			r.flush(chatID, userID)
		})
	}
	r.mu.Unlock()
}

func (r *ReadReceiptDebouncer) flush(chatID, userID string) {
	key := chatID + "|" + userID

	r.mu.Lock()
	delete(r.pending, key)
	r.lastWrite[key] = r.now()
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.write(ctx, chatID, userID); err != nil {
		log.Printf("⚠️ Failed to flush read receipt for chat %s: %v", chatID, err)
	}
}
