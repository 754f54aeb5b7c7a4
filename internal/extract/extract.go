// Package extract locates review blocks in a fetched listing page and
// turns them into raw records, along with the pagination link.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"reviewharvest/internal/review"
)

// Selectors for the review listing markup. The site renders one
// div.review per review, with the rating bars under div.grades and the
// Q&A pairs under div.answers.
const (
	selReview      = "div.review"
	selTitle       = "h3"
	selReviewer    = "p.reviewer"
	selPositionRow = "div.flex.gg-1 span"
	selPublished   = "p.published"
	selGradeRows   = "div.grades > div"
	selGradeLabel  = "p"
	selGradeBar    = "div.star.starsize-16 > div"
	selAnswerHead  = "div.answers h4"
	selAnswerBody  = "p.answer"
	selNextPage    = "a.next_page"
)

// Result is the outcome of extracting one page.
type Result struct {
	Reviews []review.RawReview
	// NextPage is the unresolved href of the pagination link, empty when
	// the page is the last one.
	NextPage string
	// Skipped counts review blocks dropped because a rating row was
	// missing its label or width attribute.
	Skipped int
}

// errMalformedGrades marks a review block whose rating rows cannot be
// read. The block is skipped rather than failing the page.
var errMalformedGrades = fmt.Errorf("malformed grade row")

// Page parses a fetched page body and extracts every review block plus
// the next-page link. The document is never mutated.
func Page(body []byte) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("parse page: %w", err)
	}
	return Document(doc)
}

// Document extracts from an already-parsed document.
func Document(doc *goquery.Document) (Result, error) {
	var res Result
	doc.Find(selReview).Each(func(_ int, block *goquery.Selection) {
		raw, err := extractBlock(block)
		if err != nil {
			res.Skipped++
			return
		}
		res.Reviews = append(res.Reviews, raw)
	})
	if href, ok := doc.Find(selNextPage).First().Attr("href"); ok {
		res.NextPage = strings.TrimSpace(href)
	}
	return res, nil
}

func extractBlock(block *goquery.Selection) (review.RawReview, error) {
	raw := review.RawReview{
		Title:            textOr(block, selTitle, review.NoTitle),
		ReviewerName:     textOr(block, selReviewer, review.NoName),
		ReviewerPosition: nthTextOr(block, selPositionRow, 0, review.NoPosition),
		ReviewerCompany:  nthTextOr(block, selPositionRow, 1, review.NoCompany),
		PublishedRaw:     textOr(block, selPublished, review.NoDate),
		Grades:           map[string]string{},
		Answers:          map[string]string{},
	}

	var gradeErr error
	block.Find(selGradeRows).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label := strings.TrimSpace(row.Find(selGradeLabel).First().Text())
		width, ok := row.Find(selGradeBar).First().Attr("style")
		if label == "" || !ok {
			gradeErr = errMalformedGrades
			return false
		}
		raw.Grades[label] = strings.TrimSpace(width)
		return true
	})
	if gradeErr != nil {
		return review.RawReview{}, gradeErr
	}

	block.Find(selAnswerHead).Each(func(_ int, head *goquery.Selection) {
		question := strings.TrimSpace(head.Text())
		if question == "" {
			return
		}
		answer := strings.TrimSpace(head.NextAllFiltered(selAnswerBody).First().Text())
		if answer == "" {
			answer = review.NoAnswer
		}
		raw.Answers[question] = answer
	})

	return raw, nil
}

// textOr returns the trimmed text of the first match under s, or the
// sentinel when the element is absent or empty.
func textOr(s *goquery.Selection, selector, sentinel string) string {
	text := strings.TrimSpace(s.Find(selector).First().Text())
	if text == "" {
		return sentinel
	}
	return text
}

func nthTextOr(s *goquery.Selection, selector string, n int, sentinel string) string {
	text := strings.TrimSpace(s.Find(selector).Eq(n).Text())
	if text == "" {
		return sentinel
	}
	return text
}
