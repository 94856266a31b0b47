package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/mock/gomock"

	"knowledge-search/internal/domain"
	"knowledge-search/internal/indexer"
	"knowledge-search/internal/rag"
	rag_mocks "knowledge-search/internal/rag/mocks"
	service_mocks "knowledge-search/internal/service/mocks"
	vectorstore_mocks "knowledge-search/internal/vectorstore/mocks"
)

type routerMocks struct {
	documents *service_mocks.MockDocumentService
	engine    *rag_mocks.MockEngine
	vectors   *vectorstore_mocks.MockVectorStore
}

func newTestRouter(t *testing.T, secret string) (http.Handler, routerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := routerMocks{
		documents: service_mocks.NewMockDocumentService(ctrl),
		engine:    rag_mocks.NewMockEngine(ctrl),
		vectors:   vectorstore_mocks.NewMockVectorStore(ctrl),
	}
	router := NewRouter(&Deps{
		Documents:   m.documents,
		Engine:      m.engine,
		VectorStore: m.vectors,
		Collection:  "docs",
		JWTSecret:   secret,
	})
	return router, m
}

func TestNewRouter(t *testing.T) {
	router, _ := newTestRouter(t, "")
	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		owner      string
		mockSetup  func(routerMocks)
		wantStatus int
	}{
		{
			name:   "health needs no owner",
			method: http.MethodGet,
			path:   "/api/health",
			mockSetup: func(m routerMocks) {
				m.vectors.EXPECT().CollectionExists(gomock.Any(), "docs").Return(true, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "documents require an owner",
			method:     http.MethodGet,
			path:       "/api/v1/documents",
			mockSetup:  func(routerMocks) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "list documents",
			method: http.MethodGet,
			path:   "/api/v1/documents",
			owner:  "alice",
			mockSetup: func(m routerMocks) {
				m.documents.EXPECT().List(gomock.Any(), "alice").Return([]*domain.Document{}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "stats is not a document id",
			method: http.MethodGet,
			path:   "/api/v1/documents/stats",
			owner:  "alice",
			mockSetup: func(m routerMocks) {
				m.documents.EXPECT().Stats(gomock.Any(), "alice").Return(&indexer.CoverageStats{}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "get document by id",
			method: http.MethodGet,
			path:   "/api/v1/documents/doc-1",
			owner:  "alice",
			mockSetup: func(m routerMocks) {
				m.documents.EXPECT().Get(gomock.Any(), "alice", "doc-1").Return(nil, domain.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "delete document by id",
			method: http.MethodDelete,
			path:   "/api/v1/documents/doc-1",
			owner:  "alice",
			mockSetup: func(m routerMocks) {
				m.documents.EXPECT().Delete(gomock.Any(), "alice", "doc-1").Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:   "search",
			method: http.MethodPost,
			path:   "/api/v1/search",
			body:   `{"query":"alpha"}`,
			owner:  "alice",
			mockSetup: func(m routerMocks) {
				m.engine.EXPECT().Answer(gomock.Any(), "alice", "alpha").Return(rag.SearchResponse{Answer: "a"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "GET search not allowed",
			method:     http.MethodGet,
			path:       "/api/v1/search",
			owner:      "alice",
			mockSetup:  func(routerMocks) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "preflight",
			method:     http.MethodOptions,
			path:       "/api/v1/documents",
			mockSetup:  func(routerMocks) {},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := newTestRouter(t, "")
			tt.mockSetup(m)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.owner != "" {
				req.Header.Set(OwnerHeader, tt.owner)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_JWTOwner(t *testing.T) {
	router, m := newTestRouter(t, testSecret)
	m.documents.EXPECT().List(gomock.Any(), "carol").Return(nil, nil)

	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "carol"})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(OwnerHeader, "mallory")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %v, want %v", w.Code, http.StatusOK)
	}
}
