package retrieval

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/knowledge"
)

func frag(text string, path ...string) knowledge.Fragment {
	return knowledge.Fragment{Path: path, Text: text}
}

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Who is the principal?", []string{"who", "is", "the", "principal"}},
		{"a b c", []string{}},
		{"", []string{}},
		{"   ?!  ", []string{}},
		{"Fees, FEES and fees-structure", []string{"fees", "and", "structure"}},
		{"class_12 admissions 2025", []string{"class", "12", "admissions", "2025"}},
		{"Ünïcode ÖL", []string{"ünïcode", "öl"}},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Tokenize(tc.in), tc.in)
	}
}

func TestRetrievePrincipal(t *testing.T) {
	c := NewCorpus([]knowledge.Fragment{
		frag("motto: Gyanamev Shakti", "motto"),
		frag("principal_desk > principal: Dr. Gunmeet Bindra", "principal_desk", "principal"),
		frag("houses: Holkar", "houses"),
	})

	res := c.Retrieve("Who is the principal?", 0)
	require.False(t, res.Empty())
	require.Equal(t, "principal_desk > principal: Dr. Gunmeet Bindra", res.Matches[0].Fragment.Text)
	require.Equal(t, 1, res.Len())
	require.Equal(t, []string{"principal_desk > principal"}, res.Breadcrumbs())
}

func TestRetrieveOrdersByScoreThenDocumentOrder(t *testing.T) {
	frags := []knowledge.Fragment{
		frag("fees: day boarding"),
		frag("fees > boarding: hostel charges"),
		frag("sports: cricket"),
		frag("fees > day: tuition"),
		frag("boarding > hostel fees: revised"),
	}
	res := Retrieve(frags, "boarding hostel fees", 0)
	require.Equal(t, []string{
		"fees > boarding: hostel charges",
		"boarding > hostel fees: revised",
		"fees: day boarding",
		"fees > day: tuition",
	}, res.Texts())
	require.Equal(t, []int{3, 3, 2, 1}, scores(res))
}

func TestRetrieveSubstringMatching(t *testing.T) {
	res := Retrieve([]knowledge.Fragment{frag("Admissions open in January")}, "admission", 0)
	require.Equal(t, 1, res.Len(), "token matches inside a longer word")
}

func TestRetrieveEmptyCases(t *testing.T) {
	frags := []knowledge.Fragment{frag("principal: Dr. Gunmeet Bindra")}

	require.True(t, Retrieve(frags, "", 0).Empty())
	require.True(t, Retrieve(frags, "a ? !", 0).Empty())
	require.True(t, Retrieve(frags, "swimming pool", 0).Empty())
	require.True(t, Retrieve(nil, "principal", 0).Empty())

	var nilCorpus *Corpus
	require.True(t, nilCorpus.Retrieve("principal", 0).Empty())
}

func TestRetrieveTruncates(t *testing.T) {
	frags := make([]knowledge.Fragment, 50)
	for i := range frags {
		frags[i] = frag(fmt.Sprintf("house %d: member", i))
	}

	res := Retrieve(frags, "house", 0)
	require.Equal(t, DefaultMaxResults, res.Len())
	require.Equal(t, "house 0: member", res.Matches[0].Fragment.Text)
	require.Equal(t, "house 19: member", res.Matches[19].Fragment.Text)

	require.Equal(t, 5, Retrieve(frags, "house", 5).Len())
	require.Equal(t, 50, Retrieve(frags, "house", 500).Len())
}

func TestRetrieveIsPure(t *testing.T) {
	frags := []knowledge.Fragment{
		frag("principal: Dr. Gunmeet Bindra"),
		frag("vice principal: someone"),
	}
	c := NewCorpus(frags)
	first := c.Retrieve("principal bindra", 0)
	second := c.Retrieve("principal bindra", 0)
	require.Equal(t, first, second)
	require.Equal(t, "principal: Dr. Gunmeet Bindra", frags[0].Text)
}

func scores(r Result) []int {
	out := make([]int, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Score
	}
	return out
}
