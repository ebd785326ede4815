package pages

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/newsdesk/web/internal/auth"
	"codeberg.org/newsdesk/web/internal/backend"
	"codeberg.org/newsdesk/web/internal/errors"
	"codeberg.org/newsdesk/web/internal/identity"
	"codeberg.org/newsdesk/web/internal/logger"
	"codeberg.org/newsdesk/web/internal/posts"
	"codeberg.org/newsdesk/web/internal/session"
)

func registerProfileActions(router *gin.RouterGroup, deps *Deps) {
	group := router.Group("/profile", auth.RequireUser(func(c *gin.Context) {
		visitor, _ := auth.GetVisitor(c)
		renderLoading(c, visitor)
	}))
	{
		group.POST("", nameSubmit(deps))
		group.POST("/posts/:id/edit", editPost(deps))
		group.POST("/posts/:id/cancel", cancelEdit(deps))
		group.POST("/posts/:id", updatePost(deps))
		group.POST("/posts/:id/delete", deletePost(deps))
	}
}

// mounts the page: the list is fetched once per visit, keyed by the user's uid.
// A failed fetch is logged and leaves the list empty.
func profileGetPage(c *gin.Context, req *Request) {
	user := req.State.User

	var list []backend.Post
	err := req.Visitor.Tasks.Run(c.Request.Context(), func(ctx context.Context) error {
		var err error
		list, err = req.Deps.Backend.ListPosts(ctx, user.UID)
		return err
	})
	if err != nil {
		logger.ErrorErr(err, "error fetching posts", "uid", user.UID, "visitor_id", req.Visitor.ID)
	}

	profile := posts.Mounted(user.DisplayName, list)
	req.Visitor.Profile.Mount(profile)

	renderProfile(c, req.Visitor, user, profile, req.Deps)
}

// the name field is staged only; nothing is sent anywhere
func nameSubmit(deps *Deps) gin.HandlerFunc {
	return withProfile(deps, func(c *gin.Context, visitor *session.Visitor, _ *identity.User) {
		name := c.PostForm("name")
		visitor.Profile.Apply(func(p posts.Profile) posts.Profile {
			return p.StageName(name)
		})

		logger.Info("profile name staged but not submitted", "visitor_id", visitor.ID)
	})
}

func editPost(deps *Deps) gin.HandlerFunc {
	return withProfile(deps, func(c *gin.Context, visitor *session.Visitor, _ *identity.User) {
		raw := c.Param("id")
		visitor.Profile.Apply(func(p posts.Profile) posts.Profile {
			if post, ok := p.Find(raw); ok {
				return p.Edit(post.ID)
			}
			return p
		})
	})
}

func cancelEdit(deps *Deps) gin.HandlerFunc {
	return withProfile(deps, func(c *gin.Context, visitor *session.Visitor, _ *identity.User) {
		visitor.Profile.Apply(posts.Profile.Cancel)
	})
}

// sends the edit buffers to PUT /post. On success the entry is patched in place
// and edit mode ends; on failure the state stays as typed and the error is logged.
func updatePost(deps *Deps) gin.HandlerFunc {
	return withProfile(deps, func(c *gin.Context, visitor *session.Visitor, _ *identity.User) {
		raw := c.Param("id")
		buffers := posts.Buffers{
			Title:   c.PostForm("title"),
			Image:   c.PostForm("image"),
			Content: c.PostForm("content"),
		}

		current := visitor.Profile.Apply(func(p posts.Profile) posts.Profile {
			if p.Mode.Editing && p.Mode.ID.String() == raw {
				return p.Type(buffers)
			}
			return p
		})

		update, ok := current.PendingUpdate()
		if !ok || update.ID.String() != raw {
			return
		}

		err := visitor.Tasks.Run(c.Request.Context(), func(ctx context.Context) error {
			return deps.Backend.UpdatePost(ctx, update)
		})
		if err != nil {
			logger.ErrorErr(err, "failed to update post", "post_id", raw, "visitor_id", visitor.ID)
			return
		}

		visitor.Profile.Apply(func(p posts.Profile) posts.Profile {
			if p.Mode.Editing && p.Mode.ID == update.ID {
				return p.UpdateSucceeded()
			}

			p.Posts = posts.Reduce(p.Posts, posts.Updated{ID: update.ID, Buffers: buffers})
			return p
		})
	})
}

// DELETE /post/{id} without confirmation; the entry goes once the backend agrees
func deletePost(deps *Deps) gin.HandlerFunc {
	return withProfile(deps, func(c *gin.Context, visitor *session.Visitor, _ *identity.User) {
		current, _ := visitor.Profile.Snapshot()

		post, ok := current.Find(c.Param("id"))
		if !ok {
			return
		}

		err := visitor.Tasks.Run(c.Request.Context(), func(ctx context.Context) error {
			return deps.Backend.DeletePost(ctx, post.ID)
		})
		if err != nil {
			logger.ErrorErr(err, "failed to delete post", "post_id", post.ID.String(), "visitor_id", visitor.ID)
			return
		}

		visitor.Profile.Apply(func(p posts.Profile) posts.Profile {
			return p.DeleteSucceeded(post.ID)
		})
	})
}

// runs a profile action against the mounted page and renders the result. Actions
// posted without a mounted page start a fresh visit instead.
func withProfile(deps *Deps, action func(c *gin.Context, visitor *session.Visitor, user *identity.User)) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitor, ok := auth.GetVisitor(c)
		if !ok {
			errors.InternalError(c, "visitor missing", nil)
			return
		}

		user, _ := auth.GetUser(c)

		if _, mounted := visitor.Profile.Snapshot(); !mounted {
			c.Redirect(http.StatusSeeOther, "/profile")
			return
		}

		action(c, visitor, user)

		profile, _ := visitor.Profile.Snapshot()
		renderProfile(c, visitor, user, profile, deps)
	}
}

func renderProfile(c *gin.Context, visitor *session.Visitor, user *identity.User, profile posts.Profile, deps *Deps) {
	cards := make([]postCard, 0, len(profile.Posts))
	for _, post := range profile.Posts {
		card := postCard{
			Post:    post,
			Content: deps.Renderer.Markdown(post.Content),
		}

		if profile.Mode.Editing && profile.Mode.ID == post.ID {
			card.Editing = true
			card.Buffers = profile.Buffers
		}

		cards = append(cards, card)
	}

	c.HTML(http.StatusOK, "profile", profilePage{
		Frame:   frame(c, "Profile", visitor.Session.State(), deps),
		Email:   user.Email,
		Name:    profile.Name,
		Photo:   user.PhotoURL,
		Posts:   cards,
		Profile: profile,
	})
}
