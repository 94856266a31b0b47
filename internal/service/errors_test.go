package service

import (
	"errors"
	"fmt"
	"testing"

	"knowledge-search/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "validation", err: &domain.ValidationError{Field: "query", Message: "required"}, want: KindInvalidInput},
		{name: "unsupported type", err: &domain.UnsupportedFileTypeError{Extension: "png"}, want: KindInvalidInput},
		{name: "unauthorized", err: domain.ErrUnauthorized, want: KindUnauthorized},
		{name: "not found", err: fmt.Errorf("failed to get document: %w", domain.ErrNotFound), want: KindNotFound},
		{name: "extraction", err: &domain.ExtractionError{Filename: "a.pdf", Err: errors.New("encrypted")}, want: KindUnprocessable},
		{name: "embedding", err: fmt.Errorf("failed to embed passages: %w", &domain.EmbeddingError{Err: errors.New("429")}), want: KindUpstream},
		{name: "vector store", err: &domain.VectorStoreError{Op: "search", Err: errors.New("down")}, want: KindUpstream},
		{name: "external sentinel", err: WrapError(ErrExternalService, "chat"), want: KindUpstream},
		{name: "orphaned vectors", err: &domain.OrphanedVectorsError{VectorIDs: []string{"a"}, Err: errors.New("disk full")}, want: KindInternal},
		{name: "plain", err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		msg     string
		wantNil bool
		wantMsg string
	}{
		{name: "nil error", err: nil, msg: "context", wantNil: true},
		{name: "wrapped error", err: errors.New("original error"), msg: "context", wantMsg: "context: original error"},
		{name: "empty message", err: errors.New("original error"), msg: "", wantMsg: ": original error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapError(tt.err, tt.msg)
			if tt.wantNil {
				if got != nil {
					t.Errorf("WrapError() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("WrapError() = nil, want error")
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("WrapError() = %v, want %v", got.Error(), tt.wantMsg)
			}
			if !errors.Is(got, tt.err) {
				t.Error("WrapError() should wrap the original error")
			}
		})
	}
}
