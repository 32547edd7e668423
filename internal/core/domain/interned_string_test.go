package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/glaze/internal/core/domain"
	"gopkg.in/yaml.v3"
)

func TestInternedString_SameHandle(t *testing.T) {
	a := domain.NewInternedString("css")
	b := domain.NewInternedString("css")

	assert.Equal(t, a.Value(), b.Value())
	assert.Equal(t, "css", a.String())
}

func TestInternedString_ZeroValue(t *testing.T) {
	var is domain.InternedString
	assert.Empty(t, is.String())
}

func TestInternedString_YAMLRoundTrip(t *testing.T) {
	type doc struct {
		Task domain.InternedString `yaml:"task"`
	}

	var d doc
	err := yaml.Unmarshal([]byte("task: share-button\n"), &d)
	assert.NoError(t, err)
	assert.Equal(t, "share-button", d.Task.String())
}

func TestNewInternedStrings(t *testing.T) {
	assert.Nil(t, domain.NewInternedStrings(nil))

	names := []string{"css", "fonts", "css"}
	interned := domain.NewInternedStrings(names)
	assert.Len(t, interned, 3)
	assert.Equal(t, interned[0].Value(), interned[2].Value())
	assert.Equal(t, names, domain.Strings(interned))
}
