package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ElStudioBarberia/course-service/internal/events"
	"github.com/ElStudioBarberia/course-service/internal/identity"
	"github.com/ElStudioBarberia/course-service/internal/utils"
)

// Refresher keeps a resolved session current when an administrator changes
// the signed-in user's profile out from under it. It consumes the
// habilitado/role change topics and, when a change targets the current
// principal, re-resolves the profile and publishes under a fresh generation.
// The guard re-evaluates on every request, so the flip takes effect on the
// user's next guarded render without re-authentication.
type Refresher struct {
	store    *Store
	resolver *Resolver
	sub      message.Subscriber
	logger   utils.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewRefresher(store *Store, resolver *Resolver, sub message.Subscriber, logger utils.Logger) *Refresher {
	return &Refresher{
		store:    store,
		resolver: resolver,
		sub:      sub,
		logger:   logger,
	}
}

// Start subscribes to the profile-change topics and launches one consumer
// per topic. Consumers exit when the context is cancelled or the bus closes.
func (r *Refresher) Start(ctx context.Context) error {
	ctx, r.cancel = context.WithCancel(ctx)

	for _, topic := range []string{events.TopicHabilitadoChanged, events.TopicRoleChanged} {
		messages, err := r.sub.Subscribe(ctx, topic)
		if err != nil {
			r.cancel()
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			for msg := range messages {
				r.handle(ctx, msg)
			}
		}()
	}
	return nil
}

// Stop cancels the subscriptions and waits for in-flight refreshes.
func (r *Refresher) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *Refresher) handle(ctx context.Context, msg *message.Message) {
	// Ack before resolving so the publisher is never blocked on our lookup.
	msg.Ack()

	var evt events.UserEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		r.logger.Error("session refresher: decode event", "error", err)
		return
	}

	current := r.store.Current()
	if current.User == nil || current.User.ID != evt.ProfileID {
		return
	}

	gen := r.store.Begin()
	profile, err := r.resolver.FetchProfile(ctx, evt.ProfileID)
	if err != nil {
		// Keep the session we have; the next change event retries.
		r.logger.Warn("session refresher: profile lookup failed",
			"principal_id", evt.ProfileID, "error", err)
		r.store.MarkHandled(gen)
		return
	}

	principal := current.User.Principal
	if principal == nil {
		r.store.MarkHandled(gen)
		return
	}
	r.store.Publish(gen, BuildAppUser(&identity.Session{Principal: principal}, profile))
}
