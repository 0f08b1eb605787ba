package rbac_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hr-calendar/internal/domain"
	"hr-calendar/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	enforceFn     func(req domain.EnforceRequest) (bool, error)
	permissionsFn func(role string) ([]domain.PermissionResponse, error)
}

func (f *fakeService) LoadPolicy(policies, inheritance [][]string) error { return nil }
func (f *fakeService) Enforce(req domain.EnforceRequest) (bool, error) {
	return f.enforceFn(req)
}
func (f *fakeService) Permissions(role string) ([]domain.PermissionResponse, error) {
	return f.permissionsFn(role)
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func TestHandler_Enforce(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success trims input", func(t *testing.T) {
		svc := &fakeService{enforceFn: func(req domain.EnforceRequest) (bool, error) {
			assert.Equal(t, domain.EnforceRequest{Role: "admin", Resource: "event", Action: "read"}, req)
			return true, nil
		}}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/rbac/enforce", strings.NewReader(`{"role":" admin ","resource":"event","action":"read "}`))
		c.Request.Header.Set("Content-Type", "application/json")

		rbac.NewHandler(svc).Enforce(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var env envelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.JSONEq(t, `{"allowed":true}`, string(env.Data))
	})

	t.Run("validation error", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/rbac/enforce", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		rbac.NewHandler(&fakeService{}).Enforce(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var env envelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		svc := &fakeService{enforceFn: func(domain.EnforceRequest) (bool, error) { return false, errors.New("boom") }}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/rbac/enforce", strings.NewReader(`{"role":"admin","resource":"event","action":"read"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		rbac.NewHandler(svc).Enforce(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandler_MyPermissions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeService{permissionsFn: func(role string) ([]domain.PermissionResponse, error) {
		assert.Equal(t, "supervisor", role)
		return []domain.PermissionResponse{{Role: role, Resource: "leave", Action: "decide"}}, nil
	}}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/rbac/permissions/me", nil)
	c.Set("role", "supervisor")

	rbac.NewHandler(svc).MyPermissions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"decide"`)
}
