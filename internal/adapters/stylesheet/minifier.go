package stylesheet

import (
	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

const cssMediaType = "text/css"

var _ ports.Minifier = (*Minifier)(nil)

// Minifier minifies css with tdewolff/minify.
type Minifier struct {
	m *minify.M
}

// NewMinifier creates a Minifier.
func NewMinifier() *Minifier {
	m := minify.New()
	m.AddFunc(cssMediaType, mincss.Minify)
	return &Minifier{m: m}
}

// Minify implements ports.Minifier.
func (m *Minifier) Minify(src []byte) ([]byte, error) {
	out, err := m.m.Bytes(cssMediaType, src)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrMinifyFailed.Error())
	}
	return out, nil
}
