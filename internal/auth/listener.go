package auth

import (
	"context"
	"sync"

	"github.com/ElStudioBarberia/course-service/internal/identity"
	"github.com/ElStudioBarberia/course-service/internal/utils"
)

// Listener is the sole reactive writer of session state. It consumes the
// identity service's auth-state-change feed, resolves each principal into an
// AppUser and publishes it. Generation tickets are taken in event order even
// though resolutions run concurrently, so a slow lookup for an old event can
// never overwrite the outcome of a newer one.
type Listener struct {
	store    *Store
	resolver *Resolver
	nav      Navigator
	logger   utils.Logger

	events      <-chan identity.AuthStateEvent
	unsubscribe func()

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewListener(client identity.Client, store *Store, resolver *Resolver, nav Navigator, logger utils.Logger) *Listener {
	events, unsubscribe := client.Subscribe()
	return &Listener{
		store:       store,
		resolver:    resolver,
		nav:         nav,
		logger:      logger,
		events:      events,
		unsubscribe: unsubscribe,
	}
}

// Start launches the event loop. The loop never lets an error escape: a
// panic or returned error here would silently end auth-event delivery for
// the rest of the process.
func (l *Listener) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-l.events:
				if !ok {
					return
				}
				l.handleEvent(ctx, evt)
			}
		}
	}()
}

// Stop unsubscribes from the feed and waits for in-flight resolutions.
func (l *Listener) Stop() {
	l.unsubscribe()
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
}

func (l *Listener) handleEvent(ctx context.Context, evt identity.AuthStateEvent) {
	// Ticket taken synchronously: event order decides write precedence.
	gen := l.store.Begin()

	if evt.Session == nil || evt.Session.Principal == nil {
		l.store.Publish(gen, nil)
		return
	}

	session := evt.Session
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				l.logger.Error("auth listener: panic during resolution", "panic", r)
				l.store.MarkHandled(gen)
			}
		}()

		profile, err := l.resolver.FetchProfile(ctx, session.Principal.ID)
		if err != nil {
			// Soft failure: keep whatever session we had, no retry.
			l.logger.Warn("auth listener: profile lookup failed",
				"principal_id", session.Principal.ID, "error", err)
			l.store.MarkHandled(gen)
			return
		}

		user := BuildAppUser(session, profile)
		if !l.store.Publish(gen, user) {
			// Superseded by a newer event; discard silently.
			return
		}

		// Redirect side effect for fresh page loads with an existing
		// session. Races with the login path's own redirect; both compute
		// the same destination, so the race is harmless.
		path := l.nav.CurrentPath()
		if path == PathLanding || path == PathPendingApproval {
			l.nav.Navigate(RedirectFor(user))
		}
	}()
}
