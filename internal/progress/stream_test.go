package progress

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEntriesTakesLastSession(t *testing.T) {
	stream := `{"title":"Dune","isbn13":"9780441013593","progress":{"readingProgress":[{"startaa":"2019","startmm":"01","startgg":"05"},{"startaa":"2020","startmm":"08","startgg":"14","endaa":"2020","endmm":"09","endgg":"01"}]}}
{"title":"No Start","isbn13":"9780306406157","progress":{"readingProgress":[{"startaa":"","endaa":"2021"}]}}
{"title":"No Progress","isbn13":"9781554042951","progress":{"readingProgress":[]}}
`

	entries, err := ReadEntries(strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "Dune", e.Title)
	assert.Equal(t, "9780441013593", e.ISBN13)
	assert.Equal(t, "2020", e.StartYear)
	assert.Equal(t, "08", e.StartMonth)
	assert.Equal(t, "14", e.StartDay)
	assert.Equal(t, "2020", e.EndYear)
	assert.Equal(t, "09", e.EndMonth)
	assert.Equal(t, "01", e.EndDay)
}

func TestReadEntriesSkipsBlankLines(t *testing.T) {
	stream := "\n" + `{"title":"Dune","isbn13":"9780441013593","progress":{"readingProgress":[{"startaa":"2020"}]}}` + "\n\n"

	entries, err := ReadEntries(strings.NewReader(stream))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadEntriesRejectsMalformedLine(t *testing.T) {
	stream := `{"title":"Dune","isbn13":"9780441013593"` + "\n"

	_, err := ReadEntries(strings.NewReader(stream))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestEntryString(t *testing.T) {
	entries, err := ReadEntries(strings.NewReader(
		`{"title":"Dune","isbn13":"9780441013593","progress":{"readingProgress":[{"startaa":"2020","startmm":"08","startgg":"14"}]}}` + "\n"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Dune (9780441013593): 2020-08-14~", entries[0].String())
}
