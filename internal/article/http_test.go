package article

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/aurora-blog/internal/auth"
)

func articleRouter(service Service, identity *auth.CallerIdentity) *gin.Engine {
	router := gin.New()
	if identity != nil {
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextIdentityKey, *identity)
			c.Next()
		})
	}
	router.GET("/api/articles", ListHandler(service))
	router.GET("/api/articles/:id", GetHandler(service))
	router.POST("/api/articles", CreateHandler(service))
	router.DELETE("/api/articles/:id", DeleteHandler(service))
	return router
}

func TestCreateRequiresIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := articleRouter(NewMemoryService(), nil)

	body, _ := json.Marshal(gin.H{"title": "t", "content": "c"})
	req := httptest.NewRequest(http.MethodPost, "/api/articles", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateAndGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	identity := &auth.CallerIdentity{ID: 1, Username: "admin", Roles: []string{"admin"}}
	router := articleRouter(NewMemoryService(), identity)

	body, _ := json.Marshal(gin.H{"title": "初投稿", "content": "本文です", "tags": []string{"go"}})
	req := httptest.NewRequest(http.MethodPost, "/api/articles", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body.String())
	}

	var created Article
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode created article: %v", err)
	}
	if created.AuthorID != 1 {
		t.Fatalf("authorId = %d, want 1", created.AuthorID)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/articles/"+created.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
}

func TestGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := articleRouter(NewMemoryService(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/articles/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteIdempotentNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	identity := &auth.CallerIdentity{ID: 1, Username: "admin", Roles: []string{"admin"}}
	service := NewMemoryService()
	router := articleRouter(service, identity)

	a := &Article{ID: "a1", Title: "t", Content: "c", AuthorID: 1}
	if err := service.Create(context.Background(), a); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/articles/a1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first delete status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/articles/a1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}
