package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCSVPadsShortRows(t *testing.T) {
	out, err := Render(FormatCSV, Table{
		Headers: []string{"rank", "name", "points"},
		Rows:    [][]string{{"1", "Aline Uwase", "120"}, {"2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "rank,name,points\n1,Aline Uwase,120\n2,,\n", string(out))
}

func TestRenderRequiresHeaders(t *testing.T) {
	_, err := Render(FormatCSV, Table{})
	assert.Error(t, err)
	_, err = Render(FormatPDF, Table{})
	assert.Error(t, err)
}

func TestRenderPDF(t *testing.T) {
	out, err := Render(FormatPDF, Table{
		Title:   "Leaderboard",
		Headers: []string{"rank", "name"},
		Rows:    [][]string{{"1", "Aline"}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}
