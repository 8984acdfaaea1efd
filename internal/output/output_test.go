package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/desktop-harness/internal/model"
)

func withFormat(t *testing.T, f Format, pretty bool) {
	t.Helper()
	oldFormat, oldPretty := OutputFormat, PrettyOutput
	OutputFormat, PrettyOutput = f, pretty
	t.Cleanup(func() { OutputFormat, PrettyOutput = oldFormat, oldPretty })
}

func TestFprintYAML(t *testing.T) {
	withFormat(t, FormatYAML, false)
	result := ReadResult{
		Window: "login",
		TS:     1707500000,
		Elements: []model.FlatElement{
			{ID: "ok", Role: "btn", Text: "OK", Bounds: [4]int{10, 20, 100, 30}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Fprint(&buf, result))
	assert.Greater(t, bytes.Count(buf.Bytes(), []byte("\n")), 1, "multi-line YAML")

	var decoded ReadResult
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "login", decoded.Window)
	require.Len(t, decoded.Elements, 1)
	assert.Equal(t, "ok", decoded.Elements[0].ID)
}

func TestFprintJSON(t *testing.T) {
	withFormat(t, FormatJSON, false)
	var buf bytes.Buffer
	require.NoError(t, Fprint(&buf, ReadResult{TS: 1, Elements: []model.FlatElement{{Role: "txt", Text: "<b>"}}}))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")), "compact JSON is one line")
	assert.Contains(t, buf.String(), "<b>", "HTML is not escaped")

	var decoded ReadResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
}

func TestFprintPrettyJSON(t *testing.T) {
	withFormat(t, FormatJSON, true)
	var buf bytes.Buffer
	require.NoError(t, Fprint(&buf, map[string]int{"a": 1}))
	assert.Contains(t, buf.String(), "\n  \"a\"")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatYAML, "yaml": FormatYAML, "json": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestReadResult_OmitEmpty(t *testing.T) {
	data, err := yaml.Marshal(ReadResult{TS: 123, Elements: []model.FlatElement{}})
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.NotContains(t, m, "window")
	assert.Contains(t, m, "ts")
}
