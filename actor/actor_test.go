package actor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bump struct{ n int }

func TestBaseDispatchSerialOrdering(t *testing.T) {
	b := NewBase()
	var mu sync.Mutex
	var seen []int
	b.Handle(bump{}, func(env *Envelope) {
		msg := env.Message.(bump)
		mu.Lock()
		seen = append(seen, msg.n)
		mu.Unlock()
	})

	mailbox := NewMailbox(16)
	ref := NewLocalRef("counter", mailbox)
	b.Bind(ref)

	for i := 0; i < 5; i++ {
		ref.Send(bump{n: i}, nil)
	}

	for i := 0; i < 5; i++ {
		env := <-mailbox.C()
		b.Dispatch(env)
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)
}

func TestDispatchDropsUnknownKind(t *testing.T) {
	b := NewBase()
	called := false
	b.Handle(bump{}, func(*Envelope) { called = true })

	b.Dispatch(&Envelope{Message: "not a bump"})
	assert.False(t, called)
}

func TestReplyPrefersReplySlot(t *testing.T) {
	b := NewBase()
	ref := NewLocalRef("actor", NewMailbox(1))
	b.Bind(ref)

	slot := newReplySlot()
	sender := &recordingRef{name: "caller"}
	b.Reply(&Envelope{Sender: sender, ReplySlot: slot}, "slot-response")

	select {
	case v := <-slot.ch:
		assert.Equal(t, "slot-response", v)
	default:
		t.Fatal("expected reply slot to be fulfilled")
	}
	assert.Empty(t, sender.received)
}

type recordingRef struct {
	name     string
	mu       sync.Mutex
	received []any
}

func (r *recordingRef) Name() string { return r.name }
func (r *recordingRef) Send(msg any, _ ActorRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, msg)
}
func (r *recordingRef) FastSend(context.Context, any) (any, error) { return nil, ErrUnsupported }

func TestReplyFallsBackToSender(t *testing.T) {
	b := NewBase()
	ref := NewLocalRef("actor", NewMailbox(1))
	b.Bind(ref)

	sender := &recordingRef{name: "caller"}
	b.Reply(&Envelope{Sender: sender}, "sender-response")

	require.Len(t, sender.received, 1)
	assert.Equal(t, "sender-response", sender.received[0])
}

func TestLocalRefFastSendTimeout(t *testing.T) {
	mailbox := NewMailbox(1)
	ref := NewLocalRef("slow", mailbox)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := ref.FastSend(ctx, bump{n: 1})
	assert.ErrorIs(t, err, ErrTimeout)

	// the unanswered envelope is still sitting in the mailbox
	env := <-mailbox.C()
	assert.Equal(t, bump{n: 1}, env.Message)

	// a late fulfill on the abandoned slot must not panic or block
	env.ReplySlot.fulfill("too late")
}

func TestLocalRefFastSendFulfilled(t *testing.T) {
	mailbox := NewMailbox(1)
	ref := NewLocalRef("echo", mailbox)

	go func() {
		env := <-mailbox.C()
		env.ReplySlot.fulfill("pong")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := ref.FastSend(ctx, bump{n: 1})
	require.NoError(t, err)
	assert.Equal(t, "pong", v)
}

func TestStopLeavesActorNotRunning(t *testing.T) {
	b := NewBase()
	assert.True(t, b.Running())
	b.Stop()
	assert.False(t, b.Running())
}
