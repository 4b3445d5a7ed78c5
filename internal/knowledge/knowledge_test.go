package knowledge

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/logger"
)

const sampleJSON = `{
	"principal_desk": {"principal": "Dr. Gunmeet Bindra", "email": "principal@dalycollege.org"},
	"houses": ["Holkar", "Scindia", {"name": "Bikaner", "founded": 1905}],
	"empty_obj": {},
	"empty_arr": [],
	"nothing": null,
	"blank": "   ",
	"boarding": true,
	"fees": 1.50
}`

func decode(t *testing.T, doc string) *Node {
	t.Helper()
	n, err := DecodeJSON(strings.NewReader(doc))
	require.NoError(t, err)
	return n
}

func texts(frags []Fragment) []string {
	out := make([]string, len(frags))
	for i, f := range frags {
		out[i] = f.Text
	}
	return out
}

func TestFlattenDocumentOrderAndBreadcrumbs(t *testing.T) {
	frags := Flatten(decode(t, sampleJSON), FlattenOptions{})

	require.Equal(t, []string{
		"principal_desk > principal: Dr. Gunmeet Bindra",
		"principal_desk > email: principal@dalycollege.org",
		"houses: Holkar",
		"houses: Scindia",
		"houses > name: Bikaner",
		"houses > founded: 1905",
		"boarding: true",
		"fees: 1.50",
	}, texts(frags))

	require.Equal(t, []string{"principal_desk", "principal"}, frags[0].Path)
	require.Equal(t, []string{"houses"}, frags[2].Path, "array index is not part of the path")
	require.Equal(t, "houses > name", frags[4].Breadcrumb())
}

func TestFlattenCountMatchesLeafCount(t *testing.T) {
	docs := []string{
		sampleJSON,
		`[]`,
		`{}`,
		`null`,
		`"  "`,
		`"root scalar"`,
		`[["a", ["b", null]], {"x": [1, 2, {"y": ""}]}]`,
		`{"a": {"b": {"c": {"d": "deep"}}}, "a2": "shallow"}`,
	}
	for _, doc := range docs {
		n := decode(t, doc)
		frags := Flatten(n, FlattenOptions{})
		require.Len(t, frags, LeafCount(n), doc)
		require.Equal(t, frags, Flatten(n, FlattenOptions{}), "flatten must be deterministic")
	}
}

func TestFlattenRootScalarsHaveNoPrefix(t *testing.T) {
	frags := Flatten(decode(t, `["Gyanamev Shakti", 1870]`), FlattenOptions{})
	require.Equal(t, []string{"Gyanamev Shakti", "1870"}, texts(frags))
	require.Empty(t, frags[0].Path)
}

func TestFlattenSiblingPathsDoNotAlias(t *testing.T) {
	n := decode(t, `{"a": {"b": "1", "c": "2", "d": {"e": "3"}}}`)
	frags := Flatten(n, FlattenOptions{})
	require.Equal(t, []string{"a", "b"}, frags[0].Path)
	require.Equal(t, []string{"a", "c"}, frags[1].Path)
	require.Equal(t, []string{"a", "d", "e"}, frags[2].Path)

	frags[0].Path[0] = "mutated"
	require.Equal(t, "a", Flatten(n, FlattenOptions{})[0].Path[0])
}

func TestFlattenMaxDepthSkipsDeepSubtrees(t *testing.T) {
	n := decode(t, `{"top": "kept", "nested": {"inner": {"leaf": "dropped"}}}`)
	frags, skipped := flatten(n, FlattenOptions{MaxDepth: 2})
	require.Equal(t, []string{"top: kept"}, texts(frags))
	require.Equal(t, 1, skipped)
}

func TestDecodeJSONErrors(t *testing.T) {
	for _, doc := range []string{`{"a":`, `{"a": 1} {"b": 2}`, ``, `{"a" 1}`} {
		_, err := DecodeJSON(strings.NewReader(doc))
		require.Error(t, err, doc)
	}

	deep := strings.Repeat("[", MaxDecodeDepth+1) + strings.Repeat("]", MaxDecodeDepth+1)
	_, err := DecodeJSON(strings.NewReader(deep))
	require.ErrorIs(t, err, errTooDeep)
}

func TestDecodeYAMLKeepsOrder(t *testing.T) {
	doc := `
motto: Gyanamev Shakti
founded: 1870
campus:
  acres: 118.8
  houses: [Holkar, Scindia]
unused: ~
`
	n, err := DecodeYAML(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, []string{
		"motto: Gyanamev Shakti",
		"founded: 1870",
		"campus > acres: 118.8",
		"campus > houses: Holkar",
		"campus > houses: Scindia",
	}, texts(Flatten(n, FlattenOptions{})))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dalydata.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o600))

	ix := Load(context.Background(), logger.NewNop(), FileSource{Path: path}, FlattenOptions{})
	require.True(t, ix.Available())
	require.Equal(t, 8, ix.Len())
	require.Equal(t, path, ix.Source())
}

func TestLoadFallsBackToUnavailable(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"principal": `), 0o600))

	cases := map[string]Source{
		"missing file": FileSource{Path: filepath.Join(dir, "missing.json")},
		"unparseable":  FileSource{Path: broken},
		"nil source":   nil,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			ix := Load(context.Background(), logger.NewNop(), src, FlattenOptions{})
			require.False(t, ix.Available())
			require.Error(t, ix.Err())
			require.Zero(t, ix.Len())
		})
	}
}

type fakeReader struct {
	body string
	err  error
}

func (f fakeReader) Open(_ context.Context, bucket, object string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

func (fakeReader) Close() error { return nil }

func TestLoadFromObjectSource(t *testing.T) {
	src := ObjectSource{Reader: fakeReader{body: "principal: Dr. Gunmeet Bindra\n"}, Bucket: "daly", Object: "kb/dalydata.yaml"}
	ix := Load(context.Background(), logger.NewNop(), src, FlattenOptions{})
	require.True(t, ix.Available())
	require.Equal(t, "gs://daly/kb/dalydata.yaml", ix.Source())
	require.Equal(t, "principal: Dr. Gunmeet Bindra", ix.Fragments()[0].Text)

	failing := ObjectSource{Reader: fakeReader{err: errors.New("403")}, Bucket: "daly", Object: "x.json"}
	require.False(t, Load(context.Background(), logger.NewNop(), failing, FlattenOptions{}).Available())
}
