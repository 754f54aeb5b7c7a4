package tokenize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"reviewharvest/internal/storage"
)

func TestPreprocess(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercases", "PRATICIDADE", "praticidade"},
		{"strips punctuation", "Ótimo, recomendo!", "ótimo recomendo"},
		{"removes stopwords", "o sistema é muito bom", "sistema bom"},
		{"keeps digits", "economizei 50 horas", "economizei 50 horas"},
		{
			"multi sentence",
			"A ferramenta ajuda muito. Recomendo para todos!",
			"ferramenta ajuda recomendo todos",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Preprocess(tc.in))
		})
	}
}

type fakeStore struct {
	storage.Store

	columns []string
	answers []storage.AnswerRow
	tokens  map[int64][3]string
}

func (f *fakeStore) AddColumnIfAbsent(_ context.Context, column, _ string) error {
	f.columns = append(f.columns, column)
	return nil
}

func (f *fakeStore) ListAnswers(_ context.Context) ([]storage.AnswerRow, error) {
	return f.answers, nil
}

func (f *fakeStore) UpdateTokens(_ context.Context, id int64, likes, improvements, problems string) error {
	if f.tokens == nil {
		f.tokens = map[int64][3]string{}
	}
	f.tokens[id] = [3]string{likes, improvements, problems}
	return nil
}

func TestPassRun(t *testing.T) {
	t.Parallel()

	store := &fakeStore{answers: []storage.AnswerRow{
		{ID: 1, Likes: "A praticidade!", Improvements: "", Problems: "Resolvi o problema de agenda."},
	}}
	pass := New(store, zaptest.NewLogger(t))

	require.NoError(t, pass.Run(context.Background()))
	assert.Equal(t, []string{
		"preferencias_tokens",
		"melhorias_tokens",
		"problemas_resolvidos_beneficios_tokens",
	}, store.columns)

	got := store.tokens[1]
	assert.Equal(t, "praticidade", got[0])
	assert.Equal(t, "", got[1])
	assert.Equal(t, "resolvi problema agenda", got[2])
}
