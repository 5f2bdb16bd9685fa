package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRich(t *testing.T) {
	got := Rich(`<p>Meet at <b>noon</b></p><script>alert(1)</script><a href="javascript:alert(1)">x</a>`)

	assert.Contains(t, got, "<b>noon</b>")
	assert.NotContains(t, got, "script")
	assert.NotContains(t, got, "javascript:")
}

func TestText(t *testing.T) {
	assert.Equal(t, "Chess & Go night", Text("  <h1>Chess &amp; Go <i>night</i></h1> "))
	assert.Equal(t, "", Text("<img src=x onerror=alert(1)>"))
}
