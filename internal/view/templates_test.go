package view

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine("en")
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestUnknownLocaleFallsBackToEnglish(t *testing.T) {
	engine, err := NewEngine("not a locale")
	require.NoError(t, err)
	assert.Equal(t, "1,234.50", engine.Money(1234.5))
}

func TestRenderSeriesSkipsUnpairedLabels(t *testing.T) {
	engine, err := NewEngine("en")
	require.NoError(t, err)
	var buf bytes.Buffer
	data := struct {
		Title  string
		Labels []string
		Totals []float64
	}{"Sales (daily)", []string{"2025-01-01", "2025-01-02"}, []float64{12.5}}
	require.NoError(t, engine.Render(&buf, "series", data))
	assert.Equal(t, "Sales (daily)\n2025-01-01    12.50\n", buf.String())
}

func TestRenderBranchesEmpty(t *testing.T) {
	engine, err := NewEngine("en")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, engine.Render(&buf, "branches", []struct {
		ID      int64
		Name    string
		Address string
	}{}))
	assert.Equal(t, "No branches yet.\n", buf.String())
}

func TestRenderUnknownTemplate(t *testing.T) {
	engine, err := NewEngine("en")
	require.NoError(t, err)
	assert.Error(t, engine.Render(&bytes.Buffer{}, "missing", nil))
}

func TestPlainText(t *testing.T) {
	html := `<div id="users-container"><script>x()</script><table>` +
		`<tr><th>Username</th><th>Email</th></tr>` +
		`<tr><td>alice</td><td>alice@example.com</td></tr></table>` +
		`<p>Line one<br>Line   two</p></div>`
	assert.Equal(t, "Username  Email\nalice  alice@example.com\nLine one\nLine two", PlainText(html))
}
