package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sluggram/backend/internal/apperror"
	"github.com/sluggram/backend/internal/middleware"
	"github.com/sluggram/backend/internal/models"
	"github.com/sluggram/backend/internal/repositories"
	"github.com/sluggram/backend/pkg/validators"
)

// fakePostRepository is an in-memory PostRepository mirroring the Mongo
// implementation's error classification.
type fakePostRepository struct {
	posts     map[string]*models.Post
	lastSkip  int64
	lastLimit int64
}

func newFakePostRepository() *fakePostRepository {
	return &fakePostRepository{posts: map[string]*models.Post{}}
}

func (f *fakePostRepository) Create(_ context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	f.posts[post.ID.Hex()] = post
	return nil
}

func (f *fakePostRepository) GetByID(_ context.Context, id string) (*models.Post, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, apperror.Invalid("invalid post ID")
	}
	post, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	return post, nil
}

func (f *fakePostRepository) List(_ context.Context, postType string, skip, limit int64) ([]models.Post, error) {
	f.lastSkip = skip
	f.lastLimit = limit
	out := []models.Post{}
	for _, p := range f.posts {
		if postType == "" || p.Type == postType {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePostRepository) ListByAuthor(_ context.Context, authorID string) ([]models.Post, error) {
	out := []models.Post{}
	for _, p := range f.posts {
		if p.AuthorID == authorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePostRepository) ListSavedBy(_ context.Context, userID string) ([]models.Post, error) {
	out := []models.Post{}
	for _, p := range f.posts {
		if slices.Contains(p.SavedBy, userID) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePostRepository) Delete(_ context.Context, id string) error {
	if _, err := f.GetByID(context.Background(), id); err != nil {
		return err
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepository) setOf(post *models.Post, field string) *[]string {
	if field == repositories.FieldSavedBy {
		return &post.SavedBy
	}
	return &post.Likes
}

func (f *fakePostRepository) AddToSet(ctx context.Context, id, field, userID string) (*models.Post, error) {
	post, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	set := f.setOf(post, field)
	if !slices.Contains(*set, userID) {
		*set = append(*set, userID)
	}
	post.UpdatedAt = time.Now()
	return post, nil
}

func (f *fakePostRepository) RemoveFromSet(ctx context.Context, id, field, userID string) (*models.Post, error) {
	post, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	set := f.setOf(post, field)
	*set = slices.DeleteFunc(*set, func(s string) bool { return s == userID })
	post.UpdatedAt = time.Now()
	return post, nil
}

func (f *fakePostRepository) AddComment(ctx context.Context, id string, comment models.Comment) (*models.Post, error) {
	post, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Comments = append(post.Comments, comment)
	post.UpdatedAt = time.Now()
	return post, nil
}

func (f *fakePostRepository) JoinStudyGroup(ctx context.Context, id, userID string) (*models.Post, error) {
	post, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Type != models.PostTypeStudy {
		return nil, apperror.Invalid("can only join study group posts")
	}
	if slices.Contains(post.Members, userID) {
		return post, nil
	}
	if len(post.Members) >= post.MaxMembers() {
		return nil, apperror.CapacityExceeded("study group is full")
	}
	post.Members = append(post.Members, userID)
	post.UpdatedAt = time.Now()
	return post, nil
}

func (f *fakePostRepository) LeaveStudyGroup(ctx context.Context, id, userID string) (*models.Post, error) {
	post, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Members = slices.DeleteFunc(post.Members, func(s string) bool { return s == userID })
	post.UpdatedAt = time.Now()
	return post, nil
}

// fakeUserRepository is an in-memory UserRepository keyed by subject id.
type fakeUserRepository struct {
	users map[string]*models.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*models.User{}}
}

func (f *fakeUserRepository) GetOrCreate(_ context.Context, seed *models.User) (*models.User, error) {
	if user, ok := f.users[seed.Auth0ID]; ok {
		return user, nil
	}
	seed.ID = primitive.NewObjectID()
	seed.CreatedAt = time.Now()
	seed.UpdatedAt = seed.CreatedAt
	f.users[seed.Auth0ID] = seed
	return seed, nil
}

func (f *fakeUserRepository) GetBySubjectID(_ context.Context, subjectID string) (*models.User, error) {
	user, ok := f.users[subjectID]
	if !ok {
		return nil, apperror.NotFound("user", subjectID)
	}
	return user, nil
}

func (f *fakeUserRepository) GetByIDOrSubject(ctx context.Context, id string) (*models.User, error) {
	for _, user := range f.users {
		if user.ID.Hex() == id {
			return user, nil
		}
	}
	return f.GetBySubjectID(ctx, id)
}

func (f *fakeUserRepository) UpdateProfile(ctx context.Context, subjectID string, update *models.UpdateProfileRequest) (*models.User, error) {
	user, err := f.GetBySubjectID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if update.Username != nil {
		user.Username = update.Username
	}
	if update.Major != nil {
		user.Major = update.Major
	}
	if update.GraduationYear != nil {
		user.GraduationYear = update.GraduationYear
	}
	if update.Bio != nil {
		user.Bio = update.Bio
	}
	user.UpdatedAt = time.Now()
	return user, nil
}

// failingUserRepository simulates a profile store outage on lookups.
type failingUserRepository struct {
	*fakeUserRepository
	err error
}

func (f *failingUserRepository) GetBySubjectID(context.Context, string) (*models.User, error) {
	return nil, f.err
}

// newTestContext builds an echo context for handler tests with the caller
// identity already injected, mirroring the auth middleware.
func newTestContext(t *testing.T, method, target string, body io.Reader, identity models.Identity) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.IdentityKey, identity)
	return c, rec
}
