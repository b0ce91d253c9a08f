package auth

import "sync"

const (
	PathLanding         = "/"
	PathDashboard       = "/dashboard"
	PathPendingApproval = "/pending-approval"
	PathCompleteProfile = "/complete-profile"
	PathAuthError       = "/auth/error"
)

// Navigator abstracts the client-side location: the listener reads the
// current path to decide whether a resolved user should be redirected, and
// both the listener and the credential operations issue navigations through
// it.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

// NavState is the default Navigator: it tracks the path the client reported
// last and the destination the server wants it at next.
type NavState struct {
	mu   sync.Mutex
	path string
}

func NewNavState() *NavState {
	return &NavState{path: PathLanding}
}

func (n *NavState) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *NavState) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = path
}
