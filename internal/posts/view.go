package posts

import "sync"

// per-visitor holder of the profile state. Only the visitor's own request
// handlers write to it.
type View struct {
	mu      sync.Mutex
	profile Profile
	mounted bool
}

func NewView() *View {
	return &View{}
}

// replaces the state after a fresh list fetch
func (v *View) Mount(p Profile) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.profile = p
	v.mounted = true
}

// returns a snapshot and whether the page was mounted this visit
func (v *View) Snapshot() (Profile, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.profile, v.mounted
}

// applies a transition atomically and returns the new state
func (v *View) Apply(fn func(Profile) Profile) Profile {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.profile = fn(v.profile)
	return v.profile
}

// forgets the visit, e.g. on sign-out
func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.profile = Profile{}
	v.mounted = false
}
