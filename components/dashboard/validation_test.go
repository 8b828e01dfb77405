package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchemaLayoutDecoderAcceptsSequences(t *testing.T) {
	decoder := NewJSONSchemaLayoutDecoder()

	ids, err := decoder.Decode([]byte(`["w-ai","w-stats"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"w-ai", "w-stats"}, ids)

	ids, err = decoder.Decode([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestJSONSchemaLayoutDecoderRejectsMalformedPayloads(t *testing.T) {
	decoder := NewJSONSchemaLayoutDecoder()
	cases := map[string]string{
		"not json":       `{{{`,
		"object":         `{"layout":["w-ai"]}`,
		"mixed types":    `["w-ai", 3]`,
		"duplicates":     `["w-ai","w-ai"]`,
		"empty id":       `["w-ai",""]`,
		"null":           `null`,
		"string literal": `"w-ai"`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decoder.Decode([]byte(payload))
			assert.Error(t, err)
		})
	}
}

func TestJSONSchemaLayoutDecoderCompilesOnce(t *testing.T) {
	decoder := NewJSONSchemaLayoutDecoder()
	first, err := decoder.compiled()
	require.NoError(t, err)
	second, err := decoder.compiled()
	require.NoError(t, err)
	assert.Same(t, first, second)
}
