package stylesheet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glaze/internal/adapters/stylesheet"
	"go.trai.ch/glaze/internal/core/domain"
)

func TestMinifier_Minify(t *testing.T) {
	m := stylesheet.NewMinifier()

	got, err := m.Minify([]byte("/* header */\n.nav  a {\n  color : #ff0000 ;\n  margin: 0px 0px;\n}\n"))
	require.NoError(t, err)

	out := string(got)
	assert.NotContains(t, out, "header")
	assert.NotContains(t, out, "\n")
	assert.Contains(t, out, ".nav a{")
	assert.Less(t, len(out), len(".nav a{color:#ff0000;margin:0px 0px;}"))
}

func TestMinifier_KeepsVendorPrefixes(t *testing.T) {
	p := stylesheet.NewPrefixer()
	m := stylesheet.NewMinifier()

	prefixed, err := p.Prefix([]byte("a { transform: none; display: flex; }"), domain.AutoprefixOptions{})
	require.NoError(t, err)
	got, err := m.Minify(prefixed)
	require.NoError(t, err)

	out := string(got)
	assert.Contains(t, out, "-webkit-transform:none")
	assert.Contains(t, out, "-ms-transform:none")
	assert.Contains(t, out, "display:-webkit-flex")
	assert.Contains(t, out, "display:-ms-flexbox")
	assert.Contains(t, out, "display:flex")
}
