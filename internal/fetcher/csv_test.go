package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kaczor4444/kompas-seniora/internal/model"
)

func TestReadCSV_VariableArity(t *testing.T) {
	in := "Lp.,Powiat,Nazwa,Typ,Koszt\n" +
		"1,Kraków,\"Dom ABC, ul. Lipowa 5\",Stały,5 200\n" +
		"2,Tarnów,Dom XYZ,4 800\n"

	rows, err := ReadCSV(strings.NewReader(in), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Quoted comma stays inside the cell.
	assert.Equal(t, model.RawRow{"1", "Kraków", "Dom ABC, ul. Lipowa 5", "Stały", "5 200"}, rows[1])
	// Short rows are kept as-is; the recovery engine deals with them.
	assert.Len(t, rows[2], 4)
}

func TestReadCSV_SemicolonDelimiter(t *testing.T) {
	in := "Kraków;Dom ABC, ul. A 1;Stały;5 200,00 zł\n"

	rows, err := ReadCSV(strings.NewReader(in), CSVOptions{Delimiter: ';'})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dom ABC, ul. A 1", rows[0][1])
}

func TestReadCSV_SkipRows(t *testing.T) {
	in := "junk line one\nKraków,Dom,Stały,5200\n"

	rows, err := ReadCSV(strings.NewReader(in), CSVOptions{SkipRows: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Kraków", rows[0][0])
}

func TestReadCSV_Empty(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(""), CSVOptions{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
