package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "日本", Truncate("日本語", 2))
	assert.Equal(t, "hello", Truncate("hello", 0))
}

func TestCollapse(t *testing.T) {
	assert.Equal(t, "a b c", Collapse("  a\n\tb   c "))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Model X is fast.", PlainText("<p>Model X is <b>fast</b>.</p>"))
	assert.Equal(t, "plain text", PlainText("plain   text"))
	assert.Equal(t, "kept", PlainText("<div>kept<script>var x = 1;</script></div>"))
}
