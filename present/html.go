package present

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	resultPolicyOnce sync.Once
	resultPolicy     *bluemonday.Policy
)

// HTML renders the message as a sanitized fragment for the web page.
func (m Message) HTML() string {
	class := "no-redeem"
	if m.Redeem {
		class = "redeem"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<h3>Prediction Result:</h3><span class="%s">%s</span>`, class, html.EscapeString(m.Headline))
	if m.Probability != nil {
		fmt.Fprintf(&b, `<progress max="1" value="%.4f"></progress>`, *m.Probability)
		fmt.Fprintf(&b, `<p><strong>Probability of Redemption:</strong> <span class="probability">%s</span></p>`,
			html.EscapeString(m.ProbabilityText))
	}
	b.WriteString(`<h3>Features that most influence redemption:</h3><ul>`)
	for _, a := range m.Advice {
		fmt.Fprintf(&b, `<li><strong>%s</strong>: %s — %s</li>`,
			html.EscapeString(a.Label), html.EscapeString(a.Value), html.EscapeString(a.Text))
	}
	fmt.Fprintf(&b, `</ul><p class="tip">%s</p>`, html.EscapeString(m.Tip))

	return resultSanitizer().Sanitize(b.String())
}

func resultSanitizer() *bluemonday.Policy {
	resultPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("h3", "p", "ul", "li", "strong")
		policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("span", "p")
		policy.AllowAttrs("max", "value").Matching(bluemonday.Number).OnElements("progress")
		resultPolicy = policy
	})
	return resultPolicy
}
