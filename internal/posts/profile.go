package posts

import "codeberg.org/newsdesk/web/internal/backend"

// either none or editing(ID)
type Mode struct {
	Editing bool
	ID      backend.PostID
}

func None() Mode {
	return Mode{}
}

func Editing(id backend.PostID) Mode {
	return Mode{Editing: true, ID: id}
}

// local state of one profile page visit
type Profile struct {
	Posts   []backend.Post
	Mode    Mode
	Buffers Buffers

	// staged display name; nothing submits it
	Name string
}

// state right after the list fetch on mount
func Mounted(name string, list []backend.Post) Profile {
	return Profile{Posts: clone(list), Name: name}
}

// finds a post in the local list by the id's string form
func (p Profile) Find(raw string) (backend.Post, bool) {
	for _, post := range p.Posts {
		if post.ID.String() == raw {
			return post, true
		}
	}

	return backend.Post{}, false
}

// none -> editing(id), copying the post's fields into the buffers.
// Unknown ids leave the state untouched.
func (p Profile) Edit(id backend.PostID) Profile {
	for _, post := range p.Posts {
		if post.ID == id {
			p.Mode = Editing(id)
			p.Buffers = Buffers{Title: post.Name, Image: post.Image, Content: post.Content}
			return p
		}
	}

	return p
}

// replaces the edit buffers while editing
func (p Profile) Type(b Buffers) Profile {
	if p.Mode.Editing {
		p.Buffers = b
	}

	return p
}

// editing(id) -> none; the list is left as it was
func (p Profile) Cancel() Profile {
	p.Mode = None()
	p.Buffers = Buffers{}
	return p
}

// the update request for the post being edited
func (p Profile) PendingUpdate() (backend.PostUpdate, bool) {
	if !p.Mode.Editing {
		return backend.PostUpdate{}, false
	}

	return backend.PostUpdate{
		ID:      p.Mode.ID,
		Name:    p.Buffers.Title,
		Image:   p.Buffers.Image,
		Content: p.Buffers.Content,
	}, true
}

// editing(id) -> none after a successful update, patching the entry in place
func (p Profile) UpdateSucceeded() Profile {
	if !p.Mode.Editing {
		return p
	}

	p.Posts = Reduce(p.Posts, Updated{ID: p.Mode.ID, Buffers: p.Buffers})
	return p.Cancel()
}

// drops the post after a successful delete; unknown ids are a no-op
func (p Profile) DeleteSucceeded(id backend.PostID) Profile {
	p.Posts = Reduce(p.Posts, Deleted{ID: id})

	if p.Mode.Editing && p.Mode.ID == id {
		p = p.Cancel()
	}

	return p
}

// stages the name field
func (p Profile) StageName(name string) Profile {
	p.Name = name
	return p
}
