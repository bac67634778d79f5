// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package api

import (
	"bytes"
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/macrocore/internal/cache"
	"github.com/tomtom215/macrocore/internal/catalog"
	"github.com/tomtom215/macrocore/internal/metrics"
	"github.com/tomtom215/macrocore/internal/middleware"
	"github.com/tomtom215/macrocore/internal/models"
	"github.com/tomtom215/macrocore/internal/storage"
)

// fakeRecommender records the last request and returns a canned result.
type fakeRecommender struct {
	mu     sync.Mutex
	result *models.RecommendationResult
	err    error

	userID, goal, activityLevel string
	opts                        models.RecommendationOptions
}

func (f *fakeRecommender) GetRecommendations(_ context.Context, userID, goal, activityLevel string, opts models.RecommendationOptions) (*models.RecommendationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userID, f.goal, f.activityLevel, f.opts = userID, goal, activityLevel, opts
	return f.result, f.err
}

type testEnv struct {
	server      http.Handler
	handler     *Handler
	profiles    *storage.ProfileStore
	recommender *fakeRecommender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := storage.Open(storage.Config{InMemory: true})
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	products := cache.NewStore[models.Product]("api_test", cache.NewMemoryBackend(0), catalog.DefaultTTL)
	t.Cleanup(func() { _ = products.Close() })

	profiles := storage.NewProfileStore(db)
	rec := &fakeRecommender{result: &models.RecommendationResult{Recommendations: []models.Recommendation{}}}
	h := NewHandler(profiles, catalog.New(storage.NewProductStore(db), products, catalog.DefaultTTL), rec)

	sec := DefaultSecurityConfig()
	sec.Disabled = true

	return &testEnv{
		server:      NewRouter(h, NewSecurity(sec)).SetupChi(),
		handler:     h,
		profiles:    profiles,
		recommender: rec,
	}
}

// envelope mirrors models.APIResponse with the payload left raw.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, target string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.server.ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rr.Body.String(), err)
		}
	}
	return rr, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, env envelope, status int, code string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	if env.Status != "error" || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rr.Body.String())
	}
	if env.Error.Code != code {
		t.Errorf("error code = %q, want %q", env.Error.Code, code)
	}
}

func validProfileBody() map[string]interface{} {
	return map[string]interface{}{
		"age":            30,
		"gender":         "male",
		"weight_kg":      80,
		"height_cm":      180,
		"activity_level": "moderate",
		"goal":           "maintain",
		"allergies":      []string{"peanut"},
	}
}

func wheyBody() map[string]interface{} {
	return map[string]interface{}{
		"name":      "Whey Isolate",
		"category":  "protein",
		"calories":  370,
		"protein":   90,
		"carbs":     2,
		"fat":       1,
		"price":     39.9,
		"barcode":   "4001",
		"allergens": []string{"milk"},
	}
}

// ===================================================================================================
// Health and Operational Endpoints
// ===================================================================================================

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	env.handler.SetVersion("1.2.3")
	env.handler.AddHealthCheck("storage", func(context.Context) error { return nil })

	rr, resp := env.do(t, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var status models.HealthStatus
	decodeData(t, resp, &status)
	if status.Status != "healthy" || status.Version != "1.2.3" {
		t.Errorf("health = %+v", status)
	}
	if status.Dependencies["storage"] != "ok" {
		t.Errorf("dependencies = %v", status.Dependencies)
	}
}

func TestHealth_Degraded(t *testing.T) {
	env := newTestEnv(t)
	env.handler.AddHealthCheck("storage", func(context.Context) error { return nil })
	env.handler.AddHealthCheck("events", func(context.Context) error { return errors.New("nats down") })

	rr, resp := env.do(t, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}

	var status models.HealthStatus
	decodeData(t, resp, &status)
	if status.Status != "degraded" {
		t.Errorf("status = %q, want degraded", status.Status)
	}
	if status.Dependencies["events"] != "unavailable" || status.Dependencies["storage"] != "ok" {
		t.Errorf("dependencies = %v", status.Dependencies)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	env.server.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Error("expected Go runtime metrics in /metrics output")
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	rr, resp := env.do(t, http.MethodGet, "/api/v1/unknown", nil)
	expectError(t, rr, resp, http.StatusNotFound, models.CodeNotFound)
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/nutrition/calculate", strings.NewReader("{}"))
	req.Header.Set(middleware.RequestIDHeader, "trace-abc")
	rr := httptest.NewRecorder()
	env.server.ServeHTTP(rr, req)

	if got := rr.Header().Get(middleware.RequestIDHeader); got != "trace-abc" {
		t.Errorf("X-Request-ID = %q, want trace-abc", got)
	}
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

// ===================================================================================================
// Nutrition Tests
// ===================================================================================================

func TestCalculateNutrition(t *testing.T) {
	env := newTestEnv(t)

	body := validProfileBody()
	delete(body, "allergies")
	rr, resp := env.do(t, http.MethodPost, "/api/v1/nutrition/calculate", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var result models.NutritionResult
	decodeData(t, resp, &result)
	// Mifflin-St Jeor, male: 10*80 + 6.25*180 - 5*30 + 5
	if math.Abs(result.BMR-1780) > 0.01 {
		t.Errorf("BMR = %v, want 1780", result.BMR)
	}
	if result.TDEE <= result.BMR {
		t.Errorf("TDEE = %v, want > BMR", result.TDEE)
	}
}

func TestCalculateNutrition_Errors(t *testing.T) {
	env := newTestEnv(t)

	young := validProfileBody()
	delete(young, "allergies")
	young["age"] = 12

	tests := []struct {
		name      string
		body      interface{}
		wantCode  string
		wantField string
	}{
		{name: "age below bound", body: young, wantCode: models.CodeValidationFailed, wantField: "age"},
		{name: "malformed json", body: "{not json", wantCode: models.CodeBadRequest},
		{name: "unknown field", body: `{"age":30,"shoe_size":44}`, wantCode: models.CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := env.do(t, http.MethodPost, "/api/v1/nutrition/calculate", tt.body)
			expectError(t, rr, resp, http.StatusBadRequest, tt.wantCode)

			if tt.wantField == "" {
				return
			}
			fields, ok := resp.Error.Details["fields"].([]interface{})
			if !ok || len(fields) == 0 {
				t.Fatalf("details = %v, want fields", resp.Error.Details)
			}
			first := fields[0].(map[string]interface{})
			if first["field"] != tt.wantField {
				t.Errorf("field = %v, want %s", first["field"], tt.wantField)
			}
		})
	}
}

// ===================================================================================================
// Profile Tests
// ===================================================================================================

func TestProfileLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rr, resp := env.do(t, http.MethodPut, "/api/v1/profiles/u1", validProfileBody())
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body %s", rr.Code, rr.Body.String())
	}
	var saved models.HealthProfile
	decodeData(t, resp, &saved)
	if saved.UserID != "u1" {
		t.Errorf("user_id = %q, want path value u1", saved.UserID)
	}

	rr, resp = env.do(t, http.MethodGet, "/api/v1/profiles/u1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rr.Code)
	}
	var got models.HealthProfile
	decodeData(t, resp, &got)
	if got.Goal != models.GoalMaintain || len(got.Allergies) != 1 {
		t.Errorf("profile = %+v", got)
	}

	rr, resp = env.do(t, http.MethodGet, "/api/v1/profiles/u1/nutrition", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("nutrition status = %d", rr.Code)
	}
	var result models.NutritionResult
	decodeData(t, resp, &result)
	if math.Abs(result.BMR-1780) > 0.01 {
		t.Errorf("BMR = %v, want 1780", result.BMR)
	}

	rr, _ = env.do(t, http.MethodDelete, "/api/v1/profiles/u1", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", rr.Code)
	}

	rr, resp = env.do(t, http.MethodGet, "/api/v1/profiles/u1", nil)
	expectError(t, rr, resp, http.StatusNotFound, models.CodeNotFound)
}

func TestPutProfile_Invalid(t *testing.T) {
	env := newTestEnv(t)

	body := validProfileBody()
	body["goal"] = "bulk"
	rr, resp := env.do(t, http.MethodPut, "/api/v1/profiles/u1", body)
	expectError(t, rr, resp, http.StatusBadRequest, models.CodeValidationFailed)

	if _, err := env.profiles.FindByID(context.Background(), "u1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("invalid profile was stored: err = %v", err)
	}
}

func TestProfileNutrition_NotFound(t *testing.T) {
	env := newTestEnv(t)
	rr, resp := env.do(t, http.MethodGet, "/api/v1/profiles/ghost/nutrition", nil)
	expectError(t, rr, resp, http.StatusNotFound, models.CodeNotFound)
}

// ===================================================================================================
// Product Tests
// ===================================================================================================

func createProduct(t *testing.T, env *testEnv, body map[string]interface{}) models.Product {
	t.Helper()
	rr, resp := env.do(t, http.MethodPost, "/api/v1/products", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body %s", rr.Code, rr.Body.String())
	}
	var p models.Product
	decodeData(t, resp, &p)
	if p.ID == "" {
		t.Fatal("created product has no id")
	}
	if loc := rr.Header().Get("Location"); loc != "/api/v1/products/"+p.ID {
		t.Errorf("Location = %q", loc)
	}
	return p
}

func TestProductLifecycle(t *testing.T) {
	env := newTestEnv(t)
	whey := createProduct(t, env, wheyBody())

	rr, resp := env.do(t, http.MethodGet, "/api/v1/products/"+whey.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rr.Code)
	}

	rr, resp = env.do(t, http.MethodGet, "/api/v1/products/barcode/4001", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("barcode status = %d", rr.Code)
	}
	var byCode models.Product
	decodeData(t, resp, &byCode)
	if byCode.ID != whey.ID {
		t.Errorf("barcode lookup id = %q, want %q", byCode.ID, whey.ID)
	}

	rr, resp = env.do(t, http.MethodGet, "/api/v1/products/"+whey.ID+"/portion?grams=30", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("portion status = %d", rr.Code)
	}
	var portion models.PortionNutrition
	decodeData(t, resp, &portion)
	if math.Abs(portion.Protein-27) > 1e-9 || math.Abs(portion.Calories-111) > 1e-9 {
		t.Errorf("portion = %+v, want protein 27 and calories 111", portion)
	}

	update := wheyBody()
	update["price"] = 29.9
	update["barcode"] = "4002"
	rr, resp = env.do(t, http.MethodPut, "/api/v1/products/"+whey.ID, update)
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr, resp = env.do(t, http.MethodGet, "/api/v1/products/barcode/4001", nil)
	expectError(t, rr, resp, http.StatusNotFound, models.CodeNotFound)

	rr, resp = env.do(t, http.MethodGet, "/api/v1/products/"+whey.ID, nil)
	var updated models.Product
	decodeData(t, resp, &updated)
	if updated.Price != 29.9 {
		t.Errorf("price after update = %v, want 29.9 (stale cache?)", updated.Price)
	}

	rr, _ = env.do(t, http.MethodDelete, "/api/v1/products/"+whey.ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", rr.Code)
	}
	rr, resp = env.do(t, http.MethodGet, "/api/v1/products/"+whey.ID, nil)
	expectError(t, rr, resp, http.StatusNotFound, models.CodeNotFound)
}

func TestCreateProduct_DuplicateBarcode(t *testing.T) {
	env := newTestEnv(t)
	createProduct(t, env, wheyBody())

	rr, resp := env.do(t, http.MethodPost, "/api/v1/products", wheyBody())
	expectError(t, rr, resp, http.StatusBadRequest, models.CodeValidationFailed)
}

func TestListProducts_Filters(t *testing.T) {
	env := newTestEnv(t)
	createProduct(t, env, wheyBody())

	gel := map[string]interface{}{
		"name": "Energy Gel", "category": "carbs", "calories": 260,
		"protein": 0, "carbs": 65, "fat": 0, "price": 2.5,
	}
	createProduct(t, env, gel)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"no filter", "", []string{"Energy Gel", "Whey Isolate"}},
		{"min protein", "?min_protein=50", []string{"Whey Isolate"}},
		{"exclude allergens", "?exclude_allergens=Milk,soy", []string{"Energy Gel"}},
		{"category", "?category=CARBS", []string{"Energy Gel"}},
		{"price range", "?min_price=10&max_price=50", []string{"Whey Isolate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := env.do(t, http.MethodGet, "/api/v1/products"+tt.query, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
			}
			var page models.ProductPage
			decodeData(t, resp, &page)
			if page.Total != len(tt.want) {
				t.Fatalf("total = %d, want %d", page.Total, len(tt.want))
			}
			names := make(map[string]bool, len(page.Items))
			for _, p := range page.Items {
				names[p.Name] = true
			}
			for _, n := range tt.want {
				if !names[n] {
					t.Errorf("missing %q in %v", n, names)
				}
			}
		})
	}
}

func TestProductQueryErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"non-numeric bound", "/api/v1/products?min_protein=lots", http.StatusBadRequest, models.CodeValidationFailed},
		{"NaN bound", "/api/v1/products?min_calories=NaN", http.StatusBadRequest, models.CodeValidationFailed},
		{"infinite bound", "/api/v1/products?max_price=-Inf", http.StatusBadRequest, models.CodeValidationFailed},
		{"non-numeric page", "/api/v1/products?page=two", http.StatusBadRequest, models.CodeValidationFailed},
		{"short search query", "/api/v1/products/search?q=%20a%20", http.StatusBadRequest, models.CodeValidationFailed},
		{"missing grams", "/api/v1/products/p1/portion", http.StatusBadRequest, models.CodeValidationFailed},
		{"zero grams", "/api/v1/products/p1/portion?grams=0", http.StatusBadRequest, models.CodeValidationFailed},
		{"unknown product", "/api/v1/products/missing", http.StatusNotFound, models.CodeNotFound},
		{"unknown barcode", "/api/v1/products/barcode/0000", http.StatusNotFound, models.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := env.do(t, http.MethodGet, tt.target, nil)
			expectError(t, rr, resp, tt.status, tt.code)
		})
	}
}

func TestSearchProducts(t *testing.T) {
	env := newTestEnv(t)
	createProduct(t, env, wheyBody())

	rr, resp := env.do(t, http.MethodGet, "/api/v1/products/search?q=%20WHEY%20", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var items []models.Product
	decodeData(t, resp, &items)
	if len(items) != 1 || items[0].Name != "Whey Isolate" {
		t.Errorf("items = %+v", items)
	}

	rr, resp = env.do(t, http.MethodGet, "/api/v1/products/search?q=zz", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if string(resp.Data) != "[]" {
		t.Errorf("empty search data = %s, want []", resp.Data)
	}
}

func TestProductMetricsUseRoutePattern(t *testing.T) {
	env := newTestEnv(t)
	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/products/{id}", "404")
	before := testutil.ToFloat64(counter)

	env.do(t, http.MethodGet, "/api/v1/products/nope-1", nil)
	env.do(t, http.MethodGet, "/api/v1/products/nope-2", nil)

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("route counter delta = %v, want 2", got)
	}
}

// ===================================================================================================
// Recommendation Tests
// ===================================================================================================

func TestGetRecommendations(t *testing.T) {
	env := newTestEnv(t)
	env.recommender.result = &models.RecommendationResult{
		Recommendations: []models.Recommendation{{ProductID: "whey", Score: 90, Confidence: 0.9}},
	}

	rr, resp := env.do(t, http.MethodGet, "/api/v1/recommendations/u1?goal=endurance&activityLevel=active&limit=5&maxProducts=20", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	f := env.recommender
	if f.userID != "u1" || f.goal != "endurance" || f.activityLevel != "active" {
		t.Errorf("request = %s/%s/%s", f.userID, f.goal, f.activityLevel)
	}
	if f.opts.Limit != 5 || f.opts.MaxProducts != 20 {
		t.Errorf("opts = %+v", f.opts)
	}
	if resp.Metadata.Fallback {
		t.Error("metadata.fallback = true, want false")
	}

	var result models.RecommendationResult
	decodeData(t, resp, &result)
	if len(result.Recommendations) != 1 || result.Recommendations[0].ProductID != "whey" {
		t.Errorf("recommendations = %+v", result.Recommendations)
	}
}

func TestGetRecommendations_Fallback(t *testing.T) {
	env := newTestEnv(t)
	env.recommender.result = &models.RecommendationResult{Recommendations: []models.Recommendation{}, Fallback: true}

	rr, resp := env.do(t, http.MethodGet, "/api/v1/recommendations/u1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !resp.Metadata.Fallback {
		t.Error("metadata.fallback = false, want true")
	}
	if env.recommender.goal != "" || env.recommender.activityLevel != "" {
		t.Error("absent query parameters should be passed through empty")
	}
}

func TestGetRecommendations_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		status int
		code   string
	}{
		{"profile not found", "/api/v1/recommendations/ghost", models.NewNotFoundError("profile", "ghost", "User profile not found"), http.StatusNotFound, models.CodeNotFound},
		{"bad limit", "/api/v1/recommendations/u1?limit=ten", nil, http.StatusBadRequest, models.CodeValidationFailed},
		{"bad maxProducts", "/api/v1/recommendations/u1?maxProducts=1.5", nil, http.StatusBadRequest, models.CodeValidationFailed},
		{"internal", "/api/v1/recommendations/u1", errors.New("boom"), http.StatusInternalServerError, models.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.recommender.err = tt.err

			rr, resp := env.do(t, http.MethodGet, tt.target, nil)
			expectError(t, rr, resp, tt.status, tt.code)
			if tt.code == models.CodeNotFound && resp.Error.Message != "User profile not found" {
				t.Errorf("message = %q", resp.Error.Message)
			}
		})
	}
}

// ===================================================================================================
// Middleware Factory Tests
// ===================================================================================================

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t)
	cfg := DefaultSecurityConfig()
	cfg.Requests = 2
	server := NewRouter(env.handler, NewSecurity(cfg)).SetupChi()

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/search?q=whey", nil)
		last = httptest.NewRecorder()
		server.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.Code)
	}
	var resp envelope
	if err := json.Unmarshal(last.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != models.CodeRateLimited {
		t.Errorf("error = %+v, want %s", resp.Error, models.CodeRateLimited)
	}

	// Operational endpoints are outside the limited group.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("/health status = %d, want 200", rr.Code)
	}
}

func TestRecommendationRateLimit(t *testing.T) {
	env := newTestEnv(t)
	cfg := DefaultSecurityConfig()
	cfg.Requests = 10
	cfg.RecommendationRequests = 1
	server := NewRouter(env.handler, NewSecurity(cfg)).SetupChi()

	get := func(target string) int {
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		return rr.Code
	}

	if code := get("/api/v1/recommendations/u1"); code != http.StatusOK {
		t.Fatalf("first recommendation status = %d, want 200", code)
	}
	if code := get("/api/v1/recommendations/u1"); code != http.StatusTooManyRequests {
		t.Errorf("second recommendation status = %d, want 429", code)
	}
	// The catalog still has budget left under the general limit.
	if code := get("/api/v1/products"); code != http.StatusOK {
		t.Errorf("products status = %d, want 200", code)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	server := NewRouter(env.handler, NewSecurity(SecurityConfig{AllowedOrigins: []string{"https://app.example.com"}, Disabled: true})).SetupChi()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"external", &models.ExternalServiceError{Service: "scoring", StatusCode: 503}, http.StatusBadGateway, models.CodeExternalService},
		{"cache", &models.CacheError{Op: "get", Err: errors.New("io")}, http.StatusServiceUnavailable, models.CodeCacheUnavailable},
		{"wrapped not found", errors.Join(errors.New("ctx"), models.ErrNotFound), http.StatusNotFound, models.CodeNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, models.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rr := httptest.NewRecorder()
			respondServiceError(rr, req, tt.err)

			var resp envelope
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			expectError(t, rr, resp, tt.status, tt.code)
		})
	}
}

func TestSanitizeLogValue(t *testing.T) {
	if got := sanitizeLogValue("a\nb\tc"); got != `a\x0ab\x09c` {
		t.Errorf("sanitizeLogValue = %q", got)
	}
}
