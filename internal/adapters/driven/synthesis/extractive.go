package synthesis

import (
	"context"
	"fmt"
	"hash/fnv"
	"slices"
	"strings"
	"unicode"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
)

var _ driven.QuizSynthesizer = (*ExtractiveSynthesizer)(nil)

// Extractive question limits.
const (
	minTermLength     = 5
	minSentenceWords  = 6
	blank             = "_____"
	clozeQuestionStem = "Fill in the blank: "
)

// fillerOptions pad the distractors when the cluster has too few terms.
var fillerOptions = []string{"None of the above", "All of the above", "Not stated in the notes"}

// stopwords are never blanked out.
var stopwords = map[string]bool{
	"about": true, "above": true, "after": true, "again": true, "against": true,
	"because": true, "before": true, "being": true, "below": true, "between": true,
	"could": true, "during": true, "every": true, "other": true, "their": true,
	"there": true, "these": true, "those": true, "through": true, "under": true,
	"until": true, "where": true, "which": true, "while": true, "would": true,
	"should": true, "since": true, "first": true, "often": true, "called": true,
}

// ExtractiveSynthesizer writes fill-in-the-blank questions from chunk text.
// The same request always produces the same item.
type ExtractiveSynthesizer struct{}

// NewExtractiveSynthesizer creates an extractive synthesizer.
func NewExtractiveSynthesizer() *ExtractiveSynthesizer {
	return &ExtractiveSynthesizer{}
}

type cloze struct {
	sentence string
	term     string
	source   domain.QueryResult
}

// Synthesize blanks the longest content word of the first usable sentence
// whose question is not already in req.Avoid. Distractors are other content
// words from the cluster.
func (s *ExtractiveSynthesizer) Synthesize(ctx context.Context, req driven.SynthesisRequest) (domain.QuizItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.QuizItem{}, err
	}

	avoid := make(map[string]bool, len(req.Avoid))
	for _, q := range req.Avoid {
		avoid[q] = true
	}

	vocab := clusterTerms(req.Cluster)
	for _, c := range candidates(req.Cluster) {
		question := clozeQuestionStem + strings.Replace(c.sentence, c.term, blank, 1)
		if avoid[question] {
			continue
		}
		return buildItem(question, c, vocab), nil
	}

	return domain.QuizItem{}, fmt.Errorf("%w: no unused sentence to quiz on", domain.ErrMalformedOutput)
}

func buildItem(question string, c cloze, vocab []string) domain.QuizItem {
	var distractors []string
	for _, t := range vocab {
		if len(distractors) == domain.QuizOptionCount-1 {
			break
		}
		if !strings.EqualFold(t, c.term) {
			distractors = append(distractors, t)
		}
	}
	for _, f := range fillerOptions {
		if len(distractors) == domain.QuizOptionCount-1 {
			break
		}
		distractors = append(distractors, f)
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(question))
	correct := int(h.Sum32() % domain.QuizOptionCount)

	options := slices.Insert(distractors, correct, c.term)
	return domain.QuizItem{
		Question:     question,
		Options:      options,
		CorrectIndex: correct,
		Explanation: fmt.Sprintf("From %s (chunk %d): %q",
			c.source.Filename, c.source.ChunkIndex, c.sentence),
	}
}

// candidates lists (sentence, term) pairs in cluster order, longest term first
// within each sentence.
func candidates(cluster []domain.QueryResult) []cloze {
	var out []cloze
	for _, r := range cluster {
		for _, sentence := range sentences(r.Text) {
			if len(strings.Fields(sentence)) < minSentenceWords {
				continue
			}
			terms := contentWords(sentence)
			slices.SortStableFunc(terms, func(a, b string) int {
				return len([]rune(b)) - len([]rune(a))
			})
			for _, t := range terms {
				out = append(out, cloze{sentence: sentence, term: t, source: r})
			}
		}
	}
	return out
}

// clusterTerms returns distinct content words across the cluster, longest first.
func clusterTerms(cluster []domain.QueryResult) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, r := range cluster {
		for _, t := range contentWords(r.Text) {
			key := strings.ToLower(t)
			if seen[key] {
				continue
			}
			seen[key] = true
			terms = append(terms, t)
		}
	}
	slices.SortStableFunc(terms, func(a, b string) int {
		return len([]rune(b)) - len([]rune(a))
	})
	return terms
}

// contentWords returns distinct words of at least minTermLength letters
// that are not stopwords, in order of appearance.
func contentWords(text string) []string {
	seen := make(map[string]bool)
	var words []string
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	}) {
		w = strings.Trim(w, "-")
		key := strings.ToLower(w)
		if len([]rune(w)) < minTermLength || stopwords[key] || seen[key] {
			continue
		}
		seen[key] = true
		words = append(words, w)
	}
	return words
}

// sentences splits text on terminal punctuation followed by whitespace.
func sentences(text string) []string {
	var out []string
	var b strings.Builder
	runes := []rune(strings.Join(strings.Fields(text), " "))
	for i, r := range runes {
		b.WriteRune(r)
		end := r == '.' || r == '?' || r == '!'
		if end && (i+1 == len(runes) || runes[i+1] == ' ') {
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}
