package cdphost

import (
	"context"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/css"
	"github.com/chromedp/chromedp"

	"github.com/domsnap/domsnap/host"
)

// computedStyle adapts the CSS domain's GetComputedStyleForNode result to
// host.ComputedStyle.
type computedStyle struct {
	props map[string]string
}

func (c *computedStyle) Get(property string) string {
	if c == nil {
		return ""
	}
	return c.props[strings.ToLower(property)]
}

// resolveComputedStyle asks the live tab for n's computed style via the
// CSS domain (session.go's Launch enables it). A failure (detached node,
// domain not enabled) degrades to an empty style rather than propagating
// an error, matching spec.md §7's "host absent" treatment.
func resolveComputedStyle(ctx context.Context, n *cdp.Node) host.ComputedStyle {
	var computed []*css.ComputedProperty
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		props, err := css.GetComputedStyleForNode(n.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		computed = props
		return nil
	}))
	if err != nil {
		return nil
	}

	props := make(map[string]string, len(computed))
	for _, p := range computed {
		props[strings.ToLower(p.Name)] = p.Value
	}
	return &computedStyle{props: props}
}
