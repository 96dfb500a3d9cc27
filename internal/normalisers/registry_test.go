package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
)

type stubNormaliser struct {
	mimes    []string
	priority int
	text     string
}

func (s stubNormaliser) SupportedMIMETypes() []string { return s.mimes }
func (s stubNormaliser) Priority() int                { return s.priority }
func (s stubNormaliser) Normalise(context.Context, *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{Text: s.text}, nil
}

func TestRegistry_HighestPriorityWins(t *testing.T) {
	r := NewRegistry()
	r.Register(stubNormaliser{mimes: []string{"text/plain"}, priority: 5, text: "low"})
	r.Register(stubNormaliser{mimes: []string{"text/plain"}, priority: 90, text: "high"})
	r.Register(stubNormaliser{mimes: []string{"text/plain"}, priority: 50, text: "mid"})

	result, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "high", result.Text)
}

func TestRegistry_IgnoresMIMEParameters(t *testing.T) {
	r := NewRegistry()
	r.Register(stubNormaliser{mimes: []string{"text/plain"}, text: "ok"})

	result, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "Text/Plain; charset=utf-8"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
}

func TestRegistry_Errors(t *testing.T) {
	r := NewRegistry()

	_, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "image/png"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestDefault(t *testing.T) {
	r := Default()
	mimes := r.SupportedMIMETypes()
	for _, m := range []string{"text/plain", "text/markdown", "text/html", "application/pdf"} {
		assert.Contains(t, mimes, m)
	}
	assert.IsIncreasing(t, mimes)

	result, err := r.Normalise(context.Background(), &domain.RawDocument{
		URI:      "/notes/cells.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Cells\n\n**Mitochondria** make ATP."),
	})
	require.NoError(t, err)
	assert.Equal(t, "Cells", result.Title)
	assert.Equal(t, "Cells\n\nMitochondria make ATP.", result.Text)
}
