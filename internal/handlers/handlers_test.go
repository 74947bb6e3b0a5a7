package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"table-games-backend/internal/config"
	"table-games-backend/internal/handlers"
	"table-games-backend/internal/middleware"
	"table-games-backend/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/register":
			json.NewEncoder(w).Encode(map[string]any{
				"token":          "tok-1",
				"tableName":      "Table 3",
				"winProbability": 1.0,
				"offers": map[string][]string{
					"card_game": {"Free Dessert"},
				},
			})
		default:
			w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(upstreamSrv.Close)

	cfg := &config.Config{
		JWTSecret:      "test-secret",
		UpstreamURL:    upstreamSrv.URL,
		RestaurantName: "Test Kitchen",
	}

	jwtService := services.NewJWTService(cfg)
	upstream := services.NewUpstreamClient(cfg)
	engine := services.NewGameEngine(services.NewMemoryStore(), services.NewOutcomeSelectorWithSeed(1), upstream, nil)

	authHandler := handlers.NewAuthHandler(engine, jwtService)
	gameHandler := handlers.NewGameHandler(engine)
	feedbackHandler := handlers.NewFeedbackHandler(engine)

	router := gin.New()
	router.POST("/api/register", authHandler.Register)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/session", gameHandler.GetSession)
		protected.POST("/feedback", feedbackHandler.Submit)
		protected.POST("/games/:game/play", gameHandler.Play)
	}

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndGetToken(t *testing.T, router *gin.Engine) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/register", "", map[string]string{
		"name":  "Asha",
		"phone": "9876543210",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("register response missing token: %s", rec.Body.String())
	}
	return resp.Token
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter(t)

	cases := []map[string]string{
		{"name": "A", "phone": "9876543210"},
		{"name": "Asha", "phone": "12345"},
		{"name": "Asha"},
	}
	for _, body := range cases {
		rec := doJSON(t, router, http.MethodPost, "/api/register", "", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%v: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestPlayFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndGetToken(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/games/card/play", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated play should get 401, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/games/card/play", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("play returned %d: %s", rec.Code, rec.Body.String())
	}

	var played struct {
		Outcome struct {
			Won     bool   `json:"won"`
			Message string `json:"message"`
		} `json:"outcome"`
	}
	json.Unmarshal(rec.Body.Bytes(), &played)
	if !played.Outcome.Won || played.Outcome.Message != "Free Dessert" {
		t.Errorf("unexpected outcome: %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/games/card/play", token, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("second play should get 409, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/games/roulette/play", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown game should get 400, got %d", rec.Code)
	}
}

func TestFeedbackOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndGetToken(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/feedback", token, map[string]int{"rating": 5})
	if rec.Code != http.StatusConflict {
		t.Errorf("feedback before playing should get 409, got %d", rec.Code)
	}

	doJSON(t, router, http.MethodPost, "/api/games/card/play", token, nil)

	rec = doJSON(t, router, http.MethodPost, "/api/feedback", token, map[string]int{"rating": 6})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("rating 6 should get 400, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/feedback", token, map[string]int{"rating": 5})
	if rec.Code != http.StatusOK {
		t.Errorf("feedback returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/feedback", token, map[string]int{"rating": 4})
	if rec.Code != http.StatusConflict {
		t.Errorf("repeat feedback should get 409, got %d", rec.Code)
	}
}

func TestSessionSnapshot(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndGetToken(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/session", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("session returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Session struct {
			TableName string `json:"table_name"`
			Played    bool   `json:"played"`
		} `json:"session"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Session.TableName != "Table 3" || resp.Session.Played {
		t.Errorf("unexpected session snapshot: %s", rec.Body.String())
	}
}
