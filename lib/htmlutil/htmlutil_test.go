package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t testing.TB, src string) *html.Node {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestGetText(t *testing.T) {
	doc := parse(t, `<div>Hello <b>world</b><script>var x = 1;</script><style>p{}</style>!</div>`)
	require.Equal(t, "Hello world!", GetText(doc))
}

func TestFindTextNode(t *testing.T) {
	doc := parse(t, `<div>
		<script>// Closing date for applications: never</script>
		<p>Posted today</p>
		<p><span> Closing date for applications: 31/10/2025 </span></p>
		<p>Closing date for applications: 01/01/2030</p>
	</div>`)

	node, ok := FindTextNode(doc, "Closing date for applications:")
	require.True(t, ok)
	require.Equal(t, "Closing date for applications: 31/10/2025", strings.TrimSpace(node.Data))

	_, ok = FindTextNode(doc, "Added by")
	require.False(t, ok)

	_, ok = FindTextNode(nil, "anything")
	require.False(t, ok)
}
