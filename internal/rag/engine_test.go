package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"knowledge-search/internal/domain"
	llm_mocks "knowledge-search/internal/llm/mocks"
	"knowledge-search/internal/vectorstore"
	vectorstore_mocks "knowledge-search/internal/vectorstore/mocks"
)

type engineMocks struct {
	embedder    *llm_mocks.MockEmbedder
	vectorStore *vectorstore_mocks.MockVectorStore
	synthesizer *llm_mocks.MockAnswerSynthesizer
}

func newTestEngine(t *testing.T) (Engine, engineMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := engineMocks{
		embedder:    llm_mocks.NewMockEmbedder(ctrl),
		vectorStore: vectorstore_mocks.NewMockVectorStore(ctrl),
		synthesizer: llm_mocks.NewMockAnswerSynthesizer(ctrl),
	}
	return NewEngine(m.embedder, m.vectorStore, "test-collection", m.synthesizer, 0), m
}

func match(id, filename, content string, score float32) vectorstore.SearchResult {
	meta := map[string]any{vectorstore.MetaOwnerID: "alice"}
	if filename != "" {
		meta[vectorstore.MetaFilename] = filename
	}
	if content != "" {
		meta[vectorstore.MetaContent] = content
	}
	return vectorstore.SearchResult{PointID: id, Score: score, Meta: meta}
}

func TestEngine_Answer_RejectsBlankQuery(t *testing.T) {
	for _, query := range []string{"", "   ", "\n\t"} {
		// No expectations: any collaborator call fails the test.
		engine, _ := newTestEngine(t)

		_, err := engine.Answer(context.Background(), "alice", query)

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "query", vErr.Field)
	}
}

func TestEngine_Answer_NoMatches(t *testing.T) {
	engine, m := newTestEngine(t)

	m.embedder.EXPECT().Embed(gomock.Any(), "What is X?").Return([]float32{1, 0}, nil)
	m.vectorStore.EXPECT().
		Search(gomock.Any(), "test-collection", []float32{1, 0}, DefaultTopK, map[string]any{vectorstore.MetaOwnerID: "alice"}).
		Return([]vectorstore.SearchResult{}, nil)

	resp, err := engine.Answer(context.Background(), "alice", "What is X?")
	require.NoError(t, err)

	assert.Equal(t, NoMatchesAnswer, resp.Answer)
	assert.Equal(t, 0, resp.Confidence)
	assert.Equal(t, 0, resp.Completeness)
	assert.Equal(t, NoMatchesSuggestions, resp.Suggestions)
	assert.NotNil(t, resp.Sources)
	assert.Empty(t, resp.Sources)
}

func TestEngine_Answer_Structured(t *testing.T) {
	engine, m := newTestEngine(t)

	results := []vectorstore.SearchResult{
		match("alice-d1-0", "report.pdf", "Revenue grew 12% in Q3.", 0.92),
		match("alice-d2-3", "", "", 0.41),
		match("alice-d1-1", "report.pdf", "Costs were flat.", 0.77),
	}
	m.embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return([]float32{1, 0}, nil)
	m.vectorStore.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(results, nil)
	m.synthesizer.EXPECT().
		Synthesize(gomock.Any(), "How did Q3 go?", []string{"Revenue grew 12% in Q3.", "Costs were flat."}).
		Return(domain.StructuredSynthesis(domain.SynthesizedAnswer{
			Answer:       "Revenue grew **12%**.",
			Confidence:   85,
			Completeness: 70,
			Suggestions:  []string{"Upload the Q4 report"},
		}), nil)

	resp, err := engine.Answer(context.Background(), "alice", "How did Q3 go?")
	require.NoError(t, err)

	assert.Equal(t, "Revenue grew **12%**.", resp.Answer)
	assert.Equal(t, 85, resp.Confidence)
	assert.Equal(t, 70, resp.Completeness)
	assert.Equal(t, []string{"Upload the Q4 report"}, resp.Suggestions)
	assert.Equal(t, []domain.Source{
		{Filename: "report.pdf", Content: "Revenue grew 12% in Q3.", Score: 0.92},
		{Filename: UnknownFilename, Content: "", Score: 0.41},
		{Filename: "report.pdf", Content: "Costs were flat.", Score: 0.77},
	}, resp.Sources)
}

func TestEngine_Answer_RawFallback(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantAnswer string
	}{
		{name: "raw text", raw: "It went well, mostly.", wantAnswer: "It went well, mostly."},
		{name: "blank raw text", raw: "  ", wantAnswer: RawFallbackAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, m := newTestEngine(t)

			m.embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return([]float32{1, 0}, nil)
			m.vectorStore.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return([]vectorstore.SearchResult{match("alice-d1-0", "a.txt", "Some text.", 0.5)}, nil)
			m.synthesizer.EXPECT().Synthesize(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(domain.RawSynthesis(tt.raw), nil)

			resp, err := engine.Answer(context.Background(), "alice", "How did it go?")
			require.NoError(t, err)

			assert.Equal(t, tt.wantAnswer, resp.Answer)
			assert.Equal(t, RawFallbackScore, resp.Confidence)
			assert.Equal(t, RawFallbackScore, resp.Completeness)
			assert.Equal(t, []string{RawFallbackSuggestion}, resp.Suggestions)
			assert.Len(t, resp.Sources, 1)
		})
	}
}

func TestEngine_Answer_NeverEmptyWithMatches(t *testing.T) {
	engine, m := newTestEngine(t)

	m.embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return([]float32{1, 0}, nil)
	m.vectorStore.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]vectorstore.SearchResult{match("alice-d1-0", "a.txt", "Some text.", 0.5)}, nil)
	m.synthesizer.EXPECT().Synthesize(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.StructuredSynthesis(domain.SynthesizedAnswer{Answer: ""}), nil)

	resp, err := engine.Answer(context.Background(), "alice", "Anything?")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Answer)
	assert.NotNil(t, resp.Suggestions)
}

func TestEngine_Answer_PropagatesGatewayErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("embedding", func(t *testing.T) {
		engine, m := newTestEngine(t)
		m.embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).
			Return(nil, &domain.EmbeddingError{Err: errors.New("timeout")})

		_, err := engine.Answer(ctx, "alice", "q")
		var embErr *domain.EmbeddingError
		assert.ErrorAs(t, err, &embErr)
	})

	t.Run("vector store", func(t *testing.T) {
		engine, m := newTestEngine(t)
		m.embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return([]float32{1, 0}, nil)
		m.vectorStore.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, &domain.VectorStoreError{Op: "search", Err: errors.New("unavailable")})

		_, err := engine.Answer(ctx, "alice", "q")
		var vsErr *domain.VectorStoreError
		assert.ErrorAs(t, err, &vsErr)
	})

	t.Run("synthesis", func(t *testing.T) {
		engine, m := newTestEngine(t)
		m.embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return([]float32{1, 0}, nil)
		m.vectorStore.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]vectorstore.SearchResult{match("alice-d1-0", "a.txt", "x", 0.5)}, nil)
		m.synthesizer.EXPECT().Synthesize(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(domain.Synthesis{}, errors.New("chat unavailable"))

		_, err := engine.Answer(ctx, "alice", "q")
		assert.Error(t, err)
	})
}

func TestEngine_Answer_OwnerIsolation(t *testing.T) {
	ctx := context.Background()
	store := vectorstore.NewMemoryStore(2)
	require.NoError(t, store.EnsureCollection(ctx, "test-collection", 2))
	require.NoError(t, store.Upsert(ctx, "test-collection", []vectorstore.Point{
		{ID: "bob-d1-0", Vec: []float32{1, 0}, Meta: map[string]any{
			vectorstore.MetaOwnerID: "bob", vectorstore.MetaFilename: "bob.txt", vectorstore.MetaContent: "Bob's secret.",
		}},
		{ID: "alice-d2-0", Vec: []float32{0.6, 0.8}, Meta: map[string]any{
			vectorstore.MetaOwnerID: "alice", vectorstore.MetaFilename: "alice.txt", vectorstore.MetaContent: "Alice's note.",
		}},
	}))

	ctrl := gomock.NewController(t)
	embedder := llm_mocks.NewMockEmbedder(ctrl)
	synthesizer := llm_mocks.NewMockAnswerSynthesizer(ctrl)
	engine := NewEngine(embedder, store, "test-collection", synthesizer, 5)

	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return([]float32{1, 0}, nil).Times(2)
	synthesizer.EXPECT().Synthesize(gomock.Any(), gomock.Any(), []string{"Alice's note."}).
		Return(domain.StructuredSynthesis(domain.SynthesizedAnswer{Answer: "A note.", Confidence: 60, Completeness: 40}), nil)

	resp, err := engine.Answer(ctx, "alice", "secret?")
	require.NoError(t, err)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "alice.txt", resp.Sources[0].Filename)
	assert.InDelta(t, 0.6, resp.Sources[0].Score, 1e-6)

	resp, err = engine.Answer(ctx, "carol", "secret?")
	require.NoError(t, err)
	assert.Equal(t, NoMatchesAnswer, resp.Answer)
}
