package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"discofm/config"
	"discofm/core/auth"
	"discofm/model"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	tracks *fakeTrackRepo
	albums *fakeAlbumRepo
	users  *fakeUserRepo
	tokens *auth.Manager
	router *mux.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tracks: &fakeTrackRepo{},
		albums: &fakeAlbumRepo{},
		users:  &fakeUserRepo{},
		tokens: auth.NewManager("test-secret", time.Hour),
	}
	handler := NewAPIHandler(env.tracks, env.albums, env.users, env.tokens, &config.Config{})
	env.router = NewRouter(handler)
	return env
}

// addUser seeds a user directly in the fake store and returns a valid token
// for it.
func (e *testEnv) addUser(t *testing.T, username, email, password string, role model.Role) (*model.User, string) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	_, err = e.users.Create(context.Background(), user)
	require.NoError(t, err)

	token, err := e.tokens.GenerateToken(user.ID.Hex(), user.Role)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) addAlbum(t *testing.T, id, name string, released time.Time, visible bool) {
	t.Helper()
	err := e.albums.Create(context.Background(), &model.Album{
		ID:          id,
		AlbumName:   name,
		ReleaseDate: released,
		IsVisible:   visible,
	})
	require.NoError(t, err)
}

func (e *testEnv) addTrack(t *testing.T, track model.Track) {
	t.Helper()
	require.NoError(t, e.tracks.Create(context.Background(), &track))
}

// do routes a request through the full middleware chain. A non-empty token is
// sent as a bearer header; a non-nil body is JSON-encoded.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var payload []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func trackNames(list []map[string]interface{}) []string {
	names := make([]string, 0, len(list))
	for _, item := range list {
		name, _ := item["name"].(string)
		names = append(names, name)
	}
	return names
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "unexpected status, body: %s", rec.Body.String())
}
