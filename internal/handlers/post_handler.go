package handlers

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sluggram/backend/internal/apperror"
	"github.com/sluggram/backend/internal/middleware"
	"github.com/sluggram/backend/internal/models"
	"github.com/sluggram/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// PostHandler handles HTTP requests related to posts.
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
	}
}

// RegisterPostRoutes registers post-related routes. requireAuth guards the
// mutating endpoints; reads stay public.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/posts", h.GetPosts)
	g.POST("/posts", h.CreatePost, requireAuth)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost, requireAuth)
	g.POST("/posts/:id/like", h.ToggleLike, requireAuth)
	g.POST("/posts/:id/comment", h.AddComment, requireAuth)
	g.POST("/posts/:id/save", h.ToggleSave, requireAuth)
	g.POST("/posts/:id/join", h.ToggleJoin, requireAuth)
	g.GET("/posts/user/:user_id", h.GetUserPosts)
	g.GET("/posts/saved/me", h.GetSavedPosts, requireAuth)
}

// authorSnapshot resolves the display name and avatar to denormalize onto a
// post or comment. A stored profile takes precedence over the token claims;
// a missing name becomes "Anonymous". The claims fallback applies only when
// no profile row exists; any other store error propagates so a wrong
// snapshot is never written. The snapshot is never refreshed after creation.
func (h *PostHandler) authorSnapshot(ctx context.Context, identity models.Identity) (string, *string, error) {
	name := identity.Name
	var avatar *string
	if identity.Avatar != "" {
		a := identity.Avatar
		avatar = &a
	}

	user, err := h.userRepository.GetBySubjectID(ctx, identity.SubjectID)
	switch {
	case err == nil:
		if user.Username != nil {
			name = *user.Username
		} else {
			name = ""
		}
		avatar = user.AvatarURL
	case !errors.Is(err, apperror.ErrNotFound):
		return "", nil, err
	}

	if name == "" {
		name = "Anonymous"
	}
	return name, avatar, nil
}

// CreatePost creates a new post authored by the caller.
func (h *PostHandler) CreatePost(c echo.Context) error {
	identity := c.Get(middleware.IdentityKey).(models.Identity)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	authorName, authorAvatar, err := h.authorSnapshot(ctx, identity)
	if err != nil {
		return toHTTPError(err)
	}

	post := &models.Post{
		Type:         req.Type,
		AuthorID:     identity.SubjectID,
		AuthorName:   authorName,
		AuthorAvatar: authorAvatar,
		Content:      req.Content,
		ImageURL:     req.ImageURL,
		VideoURL:     req.VideoURL,
		Event:        req.Event,
		Study:        req.Study,
		Likes:        []string{},
		SavedBy:      []string{},
		Comments:     []models.Comment{},
		Members:      []string{},
	}

	if post.Type == models.PostTypeStudy {
		if post.Study == nil {
			post.Study = &models.StudyDetails{}
		}
		if post.Study.MaxMembers <= 0 {
			post.Study.MaxMembers = models.DefaultMaxMembers
		}
		post.Members = []string{identity.SubjectID}
	}

	if err := h.postRepository.Create(ctx, post); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a single post by ID.
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// GetPosts lists posts newest first, optionally filtered by type. limit is
// clamped into [1,100] and defaults to 50.
func (h *PostHandler) GetPosts(c echo.Context) error {
	postType := c.QueryParam("post_type")

	skip, _ := strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	if skip < 0 {
		skip = 0
	}

	limit, err := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if err != nil {
		limit = defaultListLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	posts, err := h.postRepository.List(c.Request().Context(), postType, skip, limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// DeletePost permanently removes a post. Only the author may delete it.
func (h *PostHandler) DeletePost(c echo.Context) error {
	identity := c.Get(middleware.IdentityKey).(models.Identity)
	postID := c.Param("id")

	post, err := h.postRepository.GetByID(c.Request().Context(), postID)
	if err != nil {
		return toHTTPError(err)
	}
	if post.AuthorID != identity.SubjectID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.Delete(c.Request().Context(), postID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleLike adds the caller's id to the post's likes, or removes it when
// already present.
func (h *PostHandler) ToggleLike(c echo.Context) error {
	return h.toggleSet(c, repositories.FieldLikes)
}

// ToggleSave toggles the caller's membership in the post's saved_by set.
func (h *PostHandler) ToggleSave(c echo.Context) error {
	return h.toggleSet(c, repositories.FieldSavedBy)
}

func (h *PostHandler) toggleSet(c echo.Context, field string) error {
	identity := c.Get(middleware.IdentityKey).(models.Identity)
	postID := c.Param("id")
	ctx := c.Request().Context()

	post, err := h.postRepository.GetByID(ctx, postID)
	if err != nil {
		return toHTTPError(err)
	}

	set := post.Likes
	if field == repositories.FieldSavedBy {
		set = post.SavedBy
	}

	if slices.Contains(set, identity.SubjectID) {
		post, err = h.postRepository.RemoveFromSet(ctx, postID, field, identity.SubjectID)
	} else {
		post, err = h.postRepository.AddToSet(ctx, postID, field, identity.SubjectID)
	}
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// AddComment appends a comment to a post. Comments are append-only.
func (h *PostHandler) AddComment(c echo.Context) error {
	identity := c.Get(middleware.IdentityKey).(models.Identity)
	postID := c.Param("id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	authorName, _, err := h.authorSnapshot(ctx, identity)
	if err != nil {
		return toHTTPError(err)
	}

	comment := models.Comment{
		ID:         primitive.NewObjectID().Hex(),
		AuthorID:   identity.SubjectID,
		AuthorName: authorName,
		Text:       req.Text,
		CreatedAt:  time.Now(),
	}

	post, err := h.postRepository.AddComment(ctx, postID, comment)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// ToggleJoin toggles the caller's membership in a study group post. Joining
// a full group fails; leaving is always allowed and groups may go empty.
func (h *PostHandler) ToggleJoin(c echo.Context) error {
	identity := c.Get(middleware.IdentityKey).(models.Identity)
	postID := c.Param("id")
	ctx := c.Request().Context()

	post, err := h.postRepository.GetByID(ctx, postID)
	if err != nil {
		return toHTTPError(err)
	}
	if post.Type != models.PostTypeStudy {
		return toHTTPError(apperror.Invalid("can only join study group posts"))
	}

	if slices.Contains(post.Members, identity.SubjectID) {
		post, err = h.postRepository.LeaveStudyGroup(ctx, postID, identity.SubjectID)
	} else {
		post, err = h.postRepository.JoinStudyGroup(ctx, postID, identity.SubjectID)
	}
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// GetUserPosts lists a user's posts, newest first.
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	posts, err := h.postRepository.ListByAuthor(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// GetSavedPosts lists the posts the caller has saved, newest first.
func (h *PostHandler) GetSavedPosts(c echo.Context) error {
	identity := c.Get(middleware.IdentityKey).(models.Identity)
	posts, err := h.postRepository.ListSavedBy(c.Request().Context(), identity.SubjectID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, posts)
}
