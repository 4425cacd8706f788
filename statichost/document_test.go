package statichost_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domsnap/domsnap/host"
	"github.com/domsnap/domsnap/statichost"
)

func TestParse_BodyAndTitle(t *testing.T) {
	doc, err := statichost.ParseString(`<html><head><title>Hello</title></head><body><p>hi</p></body></html>`, "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, "Hello", doc.Title())
	assert.Equal(t, "https://example.com", doc.URL())

	body := doc.Body()
	require.NotNil(t, body)
	assert.Equal(t, "body", body.TagName())
}

func TestElement_SetAttrOverwritesInPlace(t *testing.T) {
	doc, err := statichost.ParseString(`<html><body><div id="target">x</div></body></html>`, "")
	require.NoError(t, err)

	target, ok := doc.GetElementByID("target")
	require.True(t, ok, "GetElementByID(target) not found")

	target.SetAttr("data-aipex-nodeid", "dom_abc123xyz")
	v, _ := target.Attr("data-aipex-nodeid")
	require.Equal(t, "dom_abc123xyz", v)

	target.SetAttr("data-aipex-nodeid", "dom_overwritten")
	v, _ = target.Attr("data-aipex-nodeid")
	assert.Equal(t, "dom_overwritten", v, "SetAttr did not overwrite in place")
}

func TestElement_GetElementByIDAfterIDAssignedBySetAttr(t *testing.T) {
	doc, err := statichost.ParseString(`<html><body><div>x</div></body></html>`, "")
	require.NoError(t, err)

	body := doc.Body()
	div := body.Children()[0]
	div.SetAttr("id", "fresh")

	_, ok := doc.GetElementByID("fresh")
	assert.True(t, ok, "newly assigned id not indexed")
}

func TestComputedStyle_InlineOverridesStylesheet(t *testing.T) {
	sheet, err := statichost.ParseStylesheet(`.cursor-pointer { cursor: pointer; display: block; }`)
	require.NoError(t, err)

	doc, err := statichost.ParseString(
		`<html><body><div class="cursor-pointer" style="display: none;">x</div></body></html>`, "")
	require.NoError(t, err)
	doc.SetStylesheet(sheet)

	body := doc.Body()
	div := body.Children()[0]

	win := doc.DefaultView()
	cs := win.GetComputedStyle(div)
	assert.Equal(t, "pointer", cs.Get("cursor"), "cursor should come from the stylesheet")
	assert.Equal(t, "none", cs.Get("display"), "inline style should override the stylesheet")
}

func TestContentDocument_SrcdocRecursesSameOrigin(t *testing.T) {
	doc, err := statichost.ParseString(
		`<html><body><iframe srcdoc="<html><body><button>Inner</button></body></html>"></iframe></body></html>`, "")
	require.NoError(t, err)

	body := doc.Body()
	iframe := body.Children()[0]

	fe, ok := iframe.(host.FrameElement)
	require.True(t, ok, "iframe element does not implement host.FrameElement")

	nested, ok := fe.ContentDocument()
	require.True(t, ok, "ContentDocument() ok=false for srcdoc iframe")

	button := nested.Body().Children()[0]
	require.Equal(t, "button", button.TagName())

	var text strings.Builder
	for _, child := range button.ChildNodes() {
		if child.Kind() == host.TextNode {
			text.WriteString(child.TextData())
		}
	}
	assert.Contains(t, text.String(), "Inner")
}
