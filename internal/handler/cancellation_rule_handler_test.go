package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studiofit/class-booking-api/internal/middleware"
	"github.com/studiofit/class-booking-api/internal/models"
	"github.com/studiofit/class-booking-api/internal/service"
)

type fakeRuleStore struct {
	rules  map[string]models.CancellationRule
	nextID int
}

func newFakeRuleStore() *fakeRuleStore {
	return &fakeRuleStore{rules: make(map[string]models.CancellationRule)}
}

func (f *fakeRuleStore) List(ctx context.Context) ([]models.CancellationRule, error) {
	var out []models.CancellationRule
	for _, r := range f.rules {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRuleStore) FindByID(ctx context.Context, id string) (*models.CancellationRule, error) {
	if r, ok := f.rules[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRuleStore) FindActive(ctx context.Context) (*models.CancellationRule, error) {
	for _, r := range f.rules {
		if r.IsActive {
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRuleStore) CreateActive(ctx context.Context, rule *models.CancellationRule) error {
	f.nextID++
	rule.ID = "rule-1"
	rule.IsActive = true
	for id, r := range f.rules {
		r.IsActive = false
		f.rules[id] = r
	}
	f.rules[rule.ID] = *rule
	return nil
}

func (f *fakeRuleStore) Update(ctx context.Context, rule *models.CancellationRule) error {
	f.rules[rule.ID] = *rule
	return nil
}

func (f *fakeRuleStore) UpdateActivating(ctx context.Context, rule *models.CancellationRule) error {
	rule.IsActive = true
	for id, r := range f.rules {
		if id != rule.ID {
			r.IsActive = false
			f.rules[id] = r
		}
	}
	f.rules[rule.ID] = *rule
	return nil
}

func (f *fakeRuleStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.rules[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.rules, id)
	return nil
}

func newRuleHandler(store *fakeRuleStore) *CancellationRuleHandler {
	svc := service.NewCancellationRuleService(store, nil, 0, validator.New(), zap.NewNop())
	return NewCancellationRuleHandler(svc)
}

func TestCancellationRuleHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRuleHandler(newFakeRuleStore())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/cancellation-rules", strings.NewReader(`{"name":"strict","hours_before_class":48}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var envelope struct {
		Data models.CancellationRule `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "strict", envelope.Data.Name)
	assert.True(t, envelope.Data.IsActive)
	assert.Equal(t, "admin-1", envelope.Data.CreatedBy)
}

func TestCancellationRuleHandlerCreateRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRuleHandler(newFakeRuleStore())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/cancellation-rules", strings.NewReader(`{"name":"strict","hours_before_class":48}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCancellationRuleHandlerActiveNone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRuleHandler(newFakeRuleStore())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/cancellation-rules/active", nil)

	handler.Active(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	// No active policy serializes as a null data field.
	value, present := envelope["data"]
	assert.True(t, present)
	assert.Nil(t, value)
}

func TestCancellationRuleHandlerUpdateMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRuleHandler(newFakeRuleStore())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/admin/cancellation-rules/missing", strings.NewReader(`{"name":"renamed"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Update(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancellationRuleHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newFakeRuleStore()
	store.rules["rule-1"] = models.CancellationRule{ID: "rule-1", Name: "strict", HoursBeforeClass: 48, IsActive: true}
	handler := newRuleHandler(store)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/admin/cancellation-rules/rule-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "rule-1"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, store.rules)
}
