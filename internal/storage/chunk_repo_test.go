package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestChunkRepo_ListIDsByDocument(t *testing.T) {
	db := newTestDB(t)
	docs := NewDocumentRepo(db)
	repo := NewChunkRepo(db)
	ctx := context.Background()

	chunks := testChunks("doc1", "alice", 3)
	// Insert out of order; listing must follow chunk_index.
	chunks[0], chunks[2] = chunks[2], chunks[0]
	if err := docs.Create(ctx, testDocument("doc1", "alice", time.Now()), chunks); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ids, err := repo.ListIDsByDocument(ctx, "doc1")
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}

	want := []string{"alice-doc1-0", "alice-doc1-1", "alice-doc1-2"}
	if len(ids) != len(want) {
		t.Fatalf("ListIDsByDocument() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ListIDsByDocument()[%d] = %s, want %s", i, ids[i], want[i])
		}
	}

	empty, err := repo.ListIDsByDocument(ctx, "missing")
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ListIDsByDocument() for unknown document = %v, want empty slice", empty)
	}
}

func TestChunkRepo_ListTextsByOwner(t *testing.T) {
	db := newTestDB(t)
	docs := NewDocumentRepo(db)
	repo := NewChunkRepo(db)
	ctx := context.Background()

	if err := docs.Create(ctx, testDocument("doc1", "alice", time.Now()), testChunks("doc1", "alice", 2)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := docs.Create(ctx, testDocument("doc2", "bob", time.Now()), testChunks("doc2", "bob", 5)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	texts, err := repo.ListTextsByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTextsByOwner() error = %v", err)
	}
	if len(texts) != 2 || texts[0] != "chunk 0" || texts[1] != "chunk 1" {
		t.Errorf("ListTextsByOwner() = %v", texts)
	}
}

func TestChunkRepo_GetByID(t *testing.T) {
	db := newTestDB(t)
	docs := NewDocumentRepo(db)
	repo := NewChunkRepo(db)
	ctx := context.Background()

	if err := docs.Create(ctx, testDocument("doc1", "alice", time.Now()), testChunks("doc1", "alice", 2)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	chunk, err := repo.GetByID(ctx, "alice-doc1-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if chunk.DocumentID != "doc1" || chunk.ChunkIndex != 1 || chunk.Text != "chunk 1" {
		t.Errorf("GetByID() = %+v", chunk)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() missing error = %v, want ErrNotFound", err)
	}
}
