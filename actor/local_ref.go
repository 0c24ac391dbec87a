package actor

import "context"

// LocalRef addresses an actor managed in this process. Send enqueues
// onto the actor's mailbox; FastSend additionally waits for a reply on
// a private slot (I1).
type LocalRef struct {
	name    string
	mailbox *Mailbox
}

// NewLocalRef binds a name to a mailbox. Constructed once by the
// manager when an actor is managed.
func NewLocalRef(name string, mailbox *Mailbox) *LocalRef {
	return &LocalRef{name: name, mailbox: mailbox}
}

func (r *LocalRef) Name() string { return r.name }

func (r *LocalRef) Send(msg any, sender ActorRef) {
	r.mailbox.Enqueue(&Envelope{Message: msg, Sender: sender})
}

// FastSend enqueues msg with a reply slot and blocks until either the
// slot is fulfilled or ctx is done. A late reply after timeout is
// silently dropped: it lands in the abandoned slot's buffer, which
// nobody reads, and fulfill never blocks.
func (r *LocalRef) FastSend(ctx context.Context, msg any) (any, error) {
	slot := newReplySlot()
	r.mailbox.Enqueue(&Envelope{Message: msg, ReplySlot: slot})
	select {
	case v := <-slot.ch:
		return v, nil
	case <-ctx.Done():
		return nil, ErrTimeout
	}
}
