package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidationStatus_Valid(t *testing.T) {
	for _, s := range []ValidationStatus{StatusPending, StatusOK, StatusAnomalyRange, StatusAnomalyStatistical} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, ValidationStatus("bogus").Valid())
	assert.False(t, ValidationStatus("").Valid())
}

func TestFacilityFromRecord(t *testing.T) {
	now := time.Now()
	r := CostRecord{
		Year:             2025,
		ID:               "krakow_dom_a",
		Region:           "Kraków",
		FacilityName:     "Dom A",
		Address:          "ul. A 1",
		CareType:         "Stały",
		Price:            5200.50,
		SourceURL:        "http://bip.example.pl/u.pdf",
		ValidationStatus: StatusOK,
	}

	f := FacilityFromRecord(r, now)
	assert.Equal(t, r.ID, f.ID)
	assert.Equal(t, r.FacilityName, f.Name)
	assert.Equal(t, r.Region, f.Region)
	assert.Equal(t, r.CareType, f.CareType)
	assert.InDelta(t, r.Price, f.Price, 0.001)
	assert.Equal(t, StatusOK, f.Status)
	assert.Equal(t, now, f.UpdatedAt)
}
