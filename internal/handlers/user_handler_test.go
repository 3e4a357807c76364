package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sluggram/backend/internal/models"
)

func TestGetMeCreatesProfileOnFirstAccess(t *testing.T) {
	userRepo := newFakeUserRepository()
	h := NewUserHandler(userRepo)

	c, rec := newTestContext(t, http.MethodGet, "/api/users/me", nil, models.Identity{
		SubjectID: "auth0|newslug",
		Email:     "new@ucsc.edu",
		Name:      "New Slug",
		Avatar:    "https://cdn.example/avatar.png",
	})

	require.NoError(t, h.GetMe(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "auth0|newslug", user.Auth0ID)
	assert.Equal(t, "new@ucsc.edu", user.Email)
	require.NotNil(t, user.Name)
	assert.Equal(t, "New Slug", *user.Name)
	require.NotNil(t, user.AvatarURL)
	assert.Equal(t, "https://cdn.example/avatar.png", *user.AvatarURL)
	assert.Nil(t, user.Username)
	assert.Nil(t, user.Major)
	assert.Nil(t, user.Bio)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestGetMeReturnsExistingProfile(t *testing.T) {
	userRepo := newFakeUserRepository()
	h := NewUserHandler(userRepo)

	username := "veteran"
	existing, err := userRepo.GetOrCreate(context.Background(), &models.User{
		Auth0ID:  "auth0|veteran",
		Email:    "vet@ucsc.edu",
		Username: &username,
	})
	require.NoError(t, err)

	c, rec := newTestContext(t, http.MethodGet, "/api/users/me", nil, models.Identity{
		SubjectID: "auth0|veteran",
		Email:     "changed@ucsc.edu",
	})
	require.NoError(t, h.GetMe(c))

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, existing.ID, user.ID)
	// The existing row wins over fresher claims.
	assert.Equal(t, "vet@ucsc.edu", user.Email)
}

func TestUpdateMeAppliesPartialUpdate(t *testing.T) {
	userRepo := newFakeUserRepository()
	h := NewUserHandler(userRepo)

	bio := "original bio"
	_, err := userRepo.GetOrCreate(context.Background(), &models.User{
		Auth0ID: "auth0|edit",
		Email:   "edit@ucsc.edu",
		Bio:     &bio,
	})
	require.NoError(t, err)

	body := `{"major":"Computer Science","graduation_year":"2027"}`
	c, rec := newTestContext(t, http.MethodPut, "/api/users/me", strings.NewReader(body), models.Identity{SubjectID: "auth0|edit"})
	require.NoError(t, h.UpdateMe(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.NotNil(t, user.Major)
	assert.Equal(t, "Computer Science", *user.Major)
	require.NotNil(t, user.GraduationYear)
	assert.Equal(t, "2027", *user.GraduationYear)
	// Fields not in the payload are untouched.
	require.NotNil(t, user.Bio)
	assert.Equal(t, "original bio", *user.Bio)
}

func TestUpdateMeUnknownUserIsNotFound(t *testing.T) {
	h := NewUserHandler(newFakeUserRepository())

	c, _ := newTestContext(t, http.MethodPut, "/api/users/me", strings.NewReader(`{"bio":"hi"}`), models.Identity{SubjectID: "auth0|ghost"})
	err := h.UpdateMe(c)
	assert.Equal(t, http.StatusNotFound, httpErrorCode(t, err))
}

func TestGetUserResolvesInternalIDAndSubject(t *testing.T) {
	userRepo := newFakeUserRepository()
	h := NewUserHandler(userRepo)

	user, err := userRepo.GetOrCreate(context.Background(), &models.User{
		Auth0ID: "auth0|public",
		Email:   "pub@ucsc.edu",
	})
	require.NoError(t, err)

	for _, id := range []string{user.ID.Hex(), "auth0|public"} {
		c, rec := newTestContext(t, http.MethodGet, "/api/users/"+id, nil, models.Identity{})
		c.SetParamNames("id")
		c.SetParamValues(id)
		require.NoError(t, h.GetUser(c))

		var got models.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, user.ID, got.ID)
	}

	c, _ := newTestContext(t, http.MethodGet, "/api/users/auth0|nobody", nil, models.Identity{})
	c.SetParamNames("id")
	c.SetParamValues("auth0|nobody")
	err = h.GetUser(c)
	assert.Equal(t, http.StatusNotFound, httpErrorCode(t, err))
}
