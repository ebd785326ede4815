// Package posts holds the profile page's local post list and its edit-mode state machine.
// Every transition is a pure function of the current value so it can be exercised without
// a backend or a browser.
package posts

import "codeberg.org/newsdesk/web/internal/backend"

// editable copy of a post's fields
type Buffers struct {
	Title   string
	Image   string
	Content string
}

// result of a successful backend mutation
type Mutation interface {
	apply(list []backend.Post) []backend.Post
}

// PUT /post succeeded for ID with the given fields
type Updated struct {
	ID      backend.PostID
	Buffers Buffers
}

// DELETE /post/{id} succeeded
type Deleted struct {
	ID backend.PostID
}

// returns the list after m; the input slice is never modified
func Reduce(list []backend.Post, m Mutation) []backend.Post {
	if m == nil {
		return clone(list)
	}

	return m.apply(list)
}

func (u Updated) apply(list []backend.Post) []backend.Post {
	out := make([]backend.Post, len(list))

	for i, p := range list {
		if p.ID == u.ID {
			p.Name = u.Buffers.Title
			p.Image = u.Buffers.Image
			p.Content = u.Buffers.Content
		}
		out[i] = p
	}

	return out
}

func (d Deleted) apply(list []backend.Post) []backend.Post {
	out := make([]backend.Post, 0, len(list))

	for _, p := range list {
		if p.ID != d.ID {
			out = append(out, p)
		}
	}

	return out
}

func clone(list []backend.Post) []backend.Post {
	if list == nil {
		return nil
	}

	return append([]backend.Post(nil), list...)
}
