package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestInlineScripts(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><head>
		<script src="/vendor.js"></script>
		<script>var a = 1;</script>
	</head><body><p>hello <b>world</b></p><script>var b = 2;</script></body></html>`))
	require.NoError(t, err)

	require.Equal(t, []string{"var a = 1;", "var b = 2;"}, InlineScripts(doc))
	require.Equal(t, "hello world", GetText(doc.Find("p").Nodes[0]))
}
