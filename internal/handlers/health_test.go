package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"knowledge-search/internal/vectorstore/mocks"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_ServeHTTP(t *testing.T) {
	cacheDown := pingerFunc(func(context.Context) error { return errors.New("connection refused") })
	cacheUp := pingerFunc(func(context.Context) error { return nil })

	tests := []struct {
		name       string
		method     string
		cache      Pinger
		mockSetup  func(*mocks.MockVectorStore)
		wantStatus int
		wantState  string
		wantChecks map[string]string
	}{
		{
			name:   "healthy",
			method: http.MethodGet,
			mockSetup: func(m *mocks.MockVectorStore) {
				m.EXPECT().CollectionExists(gomock.Any(), "docs").Return(true, nil)
			},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
			wantChecks: map[string]string{"vector_store": "ok"},
		},
		{
			name:   "collection missing",
			method: http.MethodGet,
			mockSetup: func(m *mocks.MockVectorStore) {
				m.EXPECT().CollectionExists(gomock.Any(), "docs").Return(false, nil)
			},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unhealthy",
			wantChecks: map[string]string{"vector_store": "error"},
		},
		{
			name:   "vector store error",
			method: http.MethodGet,
			cache:  cacheUp,
			mockSetup: func(m *mocks.MockVectorStore) {
				m.EXPECT().CollectionExists(gomock.Any(), "docs").Return(false, errors.New("dial tcp"))
			},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unhealthy",
			wantChecks: map[string]string{"vector_store": "error", "embedding_cache": "ok"},
		},
		{
			name:   "cache down degrades",
			method: http.MethodGet,
			cache:  cacheDown,
			mockSetup: func(m *mocks.MockVectorStore) {
				m.EXPECT().CollectionExists(gomock.Any(), "docs").Return(true, nil)
			},
			wantStatus: http.StatusOK,
			wantState:  "degraded",
			wantChecks: map[string]string{"vector_store": "ok", "embedding_cache": "error"},
		},
		{
			name:       "method not allowed",
			method:     http.MethodPost,
			mockSetup:  func(m *mocks.MockVectorStore) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			vs := mocks.NewMockVectorStore(ctrl)
			tt.mockSetup(vs)
			h := NewHealthHandler(vs, "docs", tt.cache)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(tt.method, "/api/health", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantState == "" {
				return
			}
			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Status != tt.wantState {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantState)
			}
			if len(resp.Checks) != len(tt.wantChecks) {
				t.Errorf("checks = %v, want %v", resp.Checks, tt.wantChecks)
			}
			for k, v := range tt.wantChecks {
				if resp.Checks[k] != v {
					t.Errorf("checks[%s] = %q, want %q", k, resp.Checks[k], v)
				}
			}
			if resp.Timestamp == "" {
				t.Error("timestamp should be set")
			}
		})
	}
}
