package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewharvest/internal/review"
)

const fullReviewPage = `<html><body>
<div class="review">
  <h3> Great tool </h3>
  <p class="reviewer">Jane</p>
  <div class="flex gg-1">
    <span>Manager</span>
    <span>na Acme Corp</span>
  </div>
  <p class="published">Published on 1 de Janeiro de 2021, 10:00</p>
  <div class="grades">
    <div>
      <p>Custo beneficio</p>
      <div class="star starsize-16"><div style="width:100%;"></div></div>
    </div>
    <div>
      <p>Facilidade de uso</p>
      <div class="star starsize-16"><div style="width:80%;"></div></div>
    </div>
  </div>
  <div class="answers">
    <h4>O que você mais gosta?</h4>
    <p class="answer">Praticidade</p>
    <h4>Pergunta sem resposta</h4>
  </div>
</div>
<a class="next_page" href="/product/astrea/avaliacoes?page=2">Next</a>
</body></html>`

func TestPageFullReview(t *testing.T) {
	t.Parallel()

	res, err := Page([]byte(fullReviewPage))
	require.NoError(t, err)
	require.Len(t, res.Reviews, 1)
	assert.Zero(t, res.Skipped)
	assert.Equal(t, "/product/astrea/avaliacoes?page=2", res.NextPage)

	raw := res.Reviews[0]
	assert.Equal(t, "Great tool", raw.Title)
	assert.Equal(t, "Jane", raw.ReviewerName)
	assert.Equal(t, "Manager", raw.ReviewerPosition)
	assert.Equal(t, "na Acme Corp", raw.ReviewerCompany)
	assert.Equal(t, "Published on 1 de Janeiro de 2021, 10:00", raw.PublishedRaw)
	assert.Equal(t, map[string]string{
		"Custo beneficio":   "width:100%;",
		"Facilidade de uso": "width:80%;",
	}, raw.Grades)
	assert.Equal(t, map[string]string{
		"O que você mais gosta?": "Praticidade",
		"Pergunta sem resposta":  review.NoAnswer,
	}, raw.Answers)
}

func TestPageMissingScalarsUseSentinels(t *testing.T) {
	t.Parallel()

	page := `<html><body><div class="review"></div></body></html>`
	res, err := Page([]byte(page))
	require.NoError(t, err)
	require.Len(t, res.Reviews, 1)

	raw := res.Reviews[0]
	assert.Equal(t, review.NoTitle, raw.Title)
	assert.Equal(t, review.NoName, raw.ReviewerName)
	assert.Equal(t, review.NoPosition, raw.ReviewerPosition)
	assert.Equal(t, review.NoCompany, raw.ReviewerCompany)
	assert.Equal(t, review.NoDate, raw.PublishedRaw)
	assert.Empty(t, raw.Grades)
	assert.Empty(t, raw.Answers)
	assert.Empty(t, res.NextPage)
}

func TestPageSkipsMalformedGradeRows(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<div class="review">
  <h3>Broken</h3>
  <div class="grades">
    <div>
      <p>Custo beneficio</p>
      <div class="star starsize-16"><div></div></div>
    </div>
  </div>
</div>
<div class="review">
  <h3>Fine</h3>
  <div class="grades">
    <div>
      <p>Custo beneficio</p>
      <div class="star starsize-16"><div style="width:60%;"></div></div>
    </div>
  </div>
</div>
</body></html>`

	res, err := Page([]byte(page))
	require.NoError(t, err)
	require.Len(t, res.Reviews, 1)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, "Fine", res.Reviews[0].Title)
}

func TestPageReviewOrderIsDocumentOrder(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<div class="review"><h3>First</h3></div>
<div class="review"><h3>Second</h3></div>
<div class="review"><h3>Third</h3></div>
</body></html>`

	res, err := Page([]byte(page))
	require.NoError(t, err)
	require.Len(t, res.Reviews, 3)
	assert.Equal(t, "First", res.Reviews[0].Title)
	assert.Equal(t, "Second", res.Reviews[1].Title)
	assert.Equal(t, "Third", res.Reviews[2].Title)
}
