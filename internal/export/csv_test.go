package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kaczor4444/kompas-seniora/internal/model"
)

func testRecords() []model.CostRecord {
	return []model.CostRecord{
		{
			Year: 2025, ID: "krakow_dom_abc", Region: "Kraków",
			FacilityName: "Dom ABC", Address: "ul. Lipowa 5", CareType: "Stały",
			Price: 5200.50, SourceURL: "http://bip.example.pl/u.pdf",
			ValidationStatus: model.StatusPending,
		},
		{
			Year: 2025, ID: "tarnow_dom_xyz", Region: "Tarnów",
			FacilityName: "Dom XYZ", CareType: "Dzienny",
			Price: 4000.00, ValidationStatus: model.StatusOK,
		},
	}
}

func TestWriteRecordsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecordsCSV(&buf, testRecords()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "year;id;region;facility_name;address;care_type;price;source_url;validation_status", lines[0])

	// Semicolon-delimited, price with period decimal notation.
	assert.Contains(t, lines[1], "5200.50")
	assert.Contains(t, lines[1], "Kraków;Dom ABC;ul. Lipowa 5")
	assert.Contains(t, lines[2], "4000.00")
}

func TestReadRecordsCSV_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecordsCSV(&buf, testRecords()))

	got, err := ReadRecordsCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, testRecords(), got)
}

func TestReadRecordsCSV_MissingColumn(t *testing.T) {
	in := "year;id;region\n2025;x;Kraków\n"
	_, err := ReadRecordsCSV(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestReadRecordsCSV_NoDataRows(t *testing.T) {
	in := "year;id;region;facility_name;address;care_type;price;source_url;validation_status\n"
	_, err := ReadRecordsCSV(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}

func TestReadRecordsCSV_RejectsInvalidPrices(t *testing.T) {
	// NaN survives every comparison the validator makes, so it must be
	// rejected at the read boundary; non-positive prices never occur in
	// legitimate record files either.
	for _, price := range []string{"nan", "NaN", "inf", "-inf", "0.00", "-5200.50"} {
		in := "year;id;region;facility_name;address;care_type;price;source_url;validation_status\n" +
			"2025;x;Kraków;Dom;;Stały;" + price + ";;pending\n"
		_, err := ReadRecordsCSV(strings.NewReader(in))
		require.Error(t, err, "price %q", price)
		assert.Contains(t, err.Error(), "invalid price", "price %q", price)
	}
}

func TestReadRecordsCSV_BadStatus(t *testing.T) {
	in := "year;id;region;facility_name;address;care_type;price;source_url;validation_status\n" +
		"2025;x;Kraków;Dom;;Stały;5000.00;;weird\n"
	_, err := ReadRecordsCSV(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown validation status")
}
