package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTermKey(t *testing.T) {
	e := NewTermEncoder()

	a := e.TermKey("<http://www.wikidata.org/entity/Q26>")
	assert.Len(t, a, TermKeySize)
	assert.Equal(t, a, e.TermKey("<http://www.wikidata.org/entity/Q26>"), "keys are deterministic")
	assert.NotEqual(t, a, e.TermKey("<http://www.wikidata.org/entity/Q27>"))
	assert.NotEqual(t, e.TermKey(""), e.TermKey(" "))
}

func TestHash128MatchesTermKey(t *testing.T) {
	e := NewTermEncoder()
	hash := e.Hash128(`"Belfast"@en`)
	assert.Equal(t, hash[:], e.TermKey(`"Belfast"@en`))
}
