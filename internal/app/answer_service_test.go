package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchatbot/internal/model"
)

func TestAnswer_JoinsPassagesInRankOrder(t *testing.T) {
	idx := &fakeIndex{matches: []model.Match{
		matchWithText("d_0", "A"),
		matchWithText("d_1", "B"),
		matchWithText("d_2", "C"),
	}}
	comp := &fakeCompleter{answer: "the answer"}
	emb := &fakeEmbedder{}
	svc := NewAnswerService(emb, idx, comp, AnswerOptions{}, nil)

	res, err := svc.Answer(context.Background(), "what is it?")
	require.NoError(t, err)
	require.NotNil(t, res.Answer)
	assert.Equal(t, "the answer", *res.Answer)

	assert.Equal(t, "A B C", comp.context)
	assert.Equal(t, "what is it?", comp.question)
	assert.Equal(t, 1, comp.calls)
	assert.Equal(t, []string{"what is it?"}, emb.oneCalls)
	assert.Equal(t, DefaultTopK, idx.lastTopK)
}

func TestAnswer_ReturnsCompletionVerbatim(t *testing.T) {
	idx := &fakeIndex{matches: []model.Match{matchWithText("d_0", "Refunds are accepted for 30 days.")}}
	comp := &fakeCompleter{answer: "\n\n The refund window is 30 days.\n"}
	svc := NewAnswerService(&fakeEmbedder{}, idx, comp, AnswerOptions{}, nil)

	res, err := svc.Answer(context.Background(), "how long is the refund window?")
	require.NoError(t, err)
	require.NotNil(t, res.Answer)
	assert.Equal(t, "\n\n The refund window is 30 days.\n", *res.Answer)
}

func TestAnswer_NoMatchesSkipsCompletion(t *testing.T) {
	comp := &fakeCompleter{answer: "should not be used"}
	svc := NewAnswerService(&fakeEmbedder{}, &fakeIndex{}, comp, AnswerOptions{}, nil)

	res, err := svc.Answer(context.Background(), "anything")
	require.NoError(t, err)
	assert.Nil(t, res.Answer)
	assert.Zero(t, comp.calls)
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	emb := &fakeEmbedder{}
	svc := NewAnswerService(emb, &fakeIndex{}, &fakeCompleter{}, AnswerOptions{}, nil)

	_, err := svc.Answer(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, emb.oneCalls)
}

func TestAnswer_UpstreamFailures(t *testing.T) {
	_, err := NewAnswerService(&fakeEmbedder{err: errors.New("boom")}, &fakeIndex{}, &fakeCompleter{}, AnswerOptions{}, nil).
		Answer(context.Background(), "q")
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "embed question", svcErr.Op)

	_, err = NewAnswerService(&fakeEmbedder{}, &fakeIndex{queryErr: errors.New("down")}, &fakeCompleter{}, AnswerOptions{}, nil).
		Answer(context.Background(), "q")
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "index query", svcErr.Op)

	idx := &fakeIndex{matches: []model.Match{matchWithText("d_0", "A")}}
	_, err = NewAnswerService(&fakeEmbedder{}, idx, &fakeCompleter{err: errors.New("timeout")}, AnswerOptions{}, nil).
		Answer(context.Background(), "q")
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "completion", svcErr.Op)
	assert.Contains(t, err.Error(), "timeout")
}

func TestAnswer_CustomTopK(t *testing.T) {
	idx := &fakeIndex{}
	_, err := NewAnswerService(&fakeEmbedder{}, idx, &fakeCompleter{}, AnswerOptions{TopK: 3}, nil).
		Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 3, idx.lastTopK)
}

func TestBuildContext(t *testing.T) {
	matches := []model.Match{
		matchWithText("1", "alpha"),
		matchWithText("2", ""),
		matchWithText("3", "alpha"),
		matchWithText("4", "beta"),
		matchWithText("5", "gamma"),
	}
	assert.Equal(t, "alpha beta gamma", BuildContext(matches, 0))
	assert.Equal(t, "alpha beta", BuildContext(matches, 12))
	assert.Equal(t, "alp", BuildContext(matches, 3))
	assert.Equal(t, "", BuildContext(nil, 0))
}

func TestAnswer_ContextCapped(t *testing.T) {
	long := strings.Repeat("x", 50)
	idx := &fakeIndex{matches: []model.Match{matchWithText("a", long), matchWithText("b", "tail")}}
	comp := &fakeCompleter{answer: "ok"}
	_, err := NewAnswerService(&fakeEmbedder{}, idx, comp, AnswerOptions{MaxContextChars: 52}, nil).
		Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, long, comp.context)
}
