package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendaav/room-booking/internal/core/domain"
	"github.com/agendaav/room-booking/internal/core/ports"
)

type stubUserService struct {
	input   ports.UpdateUserInput
	actorID string
	err     error
}

func (s *stubUserService) Get(_ context.Context, id string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: id, Name: "Bob", Email: "bob@example.com", Role: domain.RoleMember}, nil
}

func (s *stubUserService) List(context.Context) ([]*domain.User, error) {
	return []*domain.User{{ID: "u1"}, {ID: "u2"}}, nil
}

func (s *stubUserService) Update(_ context.Context, actor *domain.User, id string, in ports.UpdateUserInput) (*domain.User, error) {
	s.input = in
	s.actorID = actor.ID
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: id, Name: *in.Name}, nil
}

func (s *stubUserService) Delete(_ context.Context, actor *domain.User, _ string) error {
	s.actorID = actor.ID
	return s.err
}

func TestUserHandler_Me(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{})

	c, rec := authedContext(e, http.MethodGet, "/users/user/me", "")
	require.NoError(t, h.Me(c))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u1", body["id"])
	assert.NotContains(t, body, "password_hash")
}

func TestUserHandler_MeWithoutAuth(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{})
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/users/user/me", nil), httptest.NewRecorder())

	err := h.Me(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestUserHandler_Update(t *testing.T) {
	e := newTestEcho()
	svc := &stubUserService{}
	h := NewUserHandler(svc)

	c, rec := authedContext(e, http.MethodPut, "/users/u1", `{"name":"Alicia"}`)
	c.SetParamNames("id")
	c.SetParamValues("u1")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", svc.actorID)
	require.NotNil(t, svc.input.Name)
	assert.Equal(t, "Alicia", *svc.input.Name)
	assert.Nil(t, svc.input.Email)
	assert.Nil(t, svc.input.Password)
}

func TestUserHandler_UpdateRejectsBadEmail(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{})

	c, _ := authedContext(e, http.MethodPut, "/users/u1", `{"email":"nope"}`)
	c.SetParamNames("id")
	c.SetParamValues("u1")
	assert.ErrorIs(t, h.Update(c), domain.ErrValidation)
}

func TestUserHandler_DeleteForbidden(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{err: domain.ErrForbidden})

	c, _ := authedContext(e, http.MethodDelete, "/users/u2", "")
	c.SetParamNames("id")
	c.SetParamValues("u2")
	assert.ErrorIs(t, h.Delete(c), domain.ErrForbidden)
}

func TestUserHandler_List(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{})

	c, rec := authedContext(e, http.MethodGet, "/users", "")
	require.NoError(t, h.List(c))

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 2)
}
