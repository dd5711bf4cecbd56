package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nrb-complaints-api/internal/models"
	"github.com/noah-isme/nrb-complaints-api/internal/service"
)

type stubResolver struct {
	sessions map[string]*models.Identity
	err      error
}

func (s stubResolver) Resolve(ctx context.Context, token string) (*models.Session, error) {
	if s.err != nil {
		return &models.Session{}, s.err
	}
	identity, ok := s.sessions[token]
	if !ok {
		return &models.Session{}, nil
	}
	return &models.Session{Token: token, Identity: identity}, nil
}

var testCookie = SessionCookie{Name: "nrb_session"}

func newTestEngine(resolver sessionResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session(resolver, testCookie, nil))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CurrentIdentity(c), "token": SessionToken(c)})
	})
	r.GET("/mine", RequireAuthenticated(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/all", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doRequest(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookie.Name, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionAttachesIdentity(t *testing.T) {
	resolver := stubResolver{sessions: map[string]*models.Identity{
		"citizen-token": {ID: 1, Email: "c@example.com", Role: models.RoleCitizen},
	}}
	r := newTestEngine(resolver)

	w := doRequest(r, "/whoami", "citizen-token")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		User  *models.Identity `json:"user"`
		Token string           `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.User)
	assert.Equal(t, int64(1), body.User.ID)
	assert.Equal(t, "citizen-token", body.Token)

	w = doRequest(r, "/whoami", "unknown")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body.User)
}

func TestSessionStoreErrorFallsBackToAnonymous(t *testing.T) {
	r := newTestEngine(stubResolver{err: errors.New("redis down")})

	w := doRequest(r, "/mine", "anything")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthenticatedAndAdmin(t *testing.T) {
	resolver := stubResolver{sessions: map[string]*models.Identity{
		"citizen": {ID: 1, Role: models.RoleCitizen},
		"admin":   {ID: 2, Role: models.RoleAdmin},
	}}
	r := newTestEngine(resolver)

	cases := []struct {
		path   string
		token  string
		status int
	}{
		{"/mine", "", http.StatusUnauthorized},
		{"/mine", "citizen", http.StatusOK},
		{"/mine", "admin", http.StatusOK},
		{"/all", "", http.StatusForbidden},
		{"/all", "citizen", http.StatusForbidden},
		{"/all", "admin", http.StatusOK},
	}
	for _, tc := range cases {
		w := doRequest(r, tc.path, tc.token)
		assert.Equal(t, tc.status, w.Code, "%s with %q", tc.path, tc.token)
	}

	w := doRequest(r, "/mine", "")
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "UNAUTHORIZED", envelope.Error.Code)
}

func TestSessionCookieAttributes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/login", nil)

	cookie := SessionCookie{Name: "nrb_session", Secure: true}
	cookie.Write(c, "tok", time.Now().Add(time.Hour))
	cookie.Clear(c)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	set, cleared := cookies[0], cookies[1]
	assert.Equal(t, "tok", set.Value)
	assert.True(t, set.HttpOnly)
	assert.True(t, set.Secure)
	assert.Equal(t, http.SameSiteLaxMode, set.SameSite)
	assert.Equal(t, "/", set.Path)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.PUT("/api/complaints/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/complaints/1", "/api/complaints/2", "/nowhere"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, path, nil))
	}

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	paths := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "path" {
					paths[label.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"/api/complaints/:id": 2, unmatchedRoute: 1}, paths)
}
