package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kaczor4444/kompas-seniora/internal/model"
)

func sampleRows() []model.RawRow {
	return []model.RawRow{
		{"Lp.", "Powiat", "Nazwa", "Typ", "Koszt"},
		{"1", "Kraków", "Dom Spokojnej Starości, ul. Lipowa 5", "Stały", "5 200,00 zł"},
		{"2", "Nowy Targ", "Dom XYZ", "Dzienny", "nan"},
		{"", "nan", "", ""},
		{"3", "Tarnów", "Ośrodek Wsparcia, ul. Polna 1", "Stały", "4.800.00"},
	}
}

func TestTransform(t *testing.T) {
	records, stats := Transform(sampleRows(), 2025, "http://bip.example.pl/u.pdf", nil)

	assert.Equal(t, 5, stats.RowsIn)
	assert.Equal(t, 2, stats.RecordsOut)
	require.Len(t, records, 2)

	// Insertion order preserved.
	assert.Equal(t, "Kraków", records[0].Region)
	assert.Equal(t, "Tarnów", records[1].Region)
	assert.InDelta(t, 4800.00, records[1].Price, 0.001)

	// Exclusion guarantee: everything surviving has a price and a region.
	for _, r := range records {
		assert.Greater(t, r.Price, 0.0)
		assert.NotEmpty(t, r.Region)
		assert.Equal(t, model.StatusPending, r.ValidationStatus)
	}
}

func TestTransform_Idempotent(t *testing.T) {
	first, _ := Transform(sampleRows(), 2025, "http://bip.example.pl/u.pdf", nil)
	second, _ := Transform(sampleRows(), 2025, "http://bip.example.pl/u.pdf", nil)
	assert.Equal(t, first, second)
}

func TestTransform_DuplicateIDsKept(t *testing.T) {
	rows := []model.RawRow{
		{"1", "Kraków", "Dom ABC, ul. A 1", "Stały", "5 000,00"},
		{"2", "Kraków", "Dom ABC, ul. B 2", "Dzienny", "6 000,00"},
	}

	records, _ := Transform(rows, 2025, "", nil)
	require.Len(t, records, 2)
	assert.Equal(t, records[0].ID, records[1].ID)
}

func TestTransform_EmptyInput(t *testing.T) {
	records, stats := Transform(nil, 2025, "", nil)
	assert.Empty(t, records)
	assert.Equal(t, 0, stats.RowsIn)
	assert.Equal(t, 0, stats.RecordsOut)
}
