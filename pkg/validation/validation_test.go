package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"weatherdesk.app/models"
)

func TestValidatePlace(t *testing.T) {
	tests := []struct {
		name    string
		place   models.Place
		wantErr bool
	}{
		{"valid coordinates", models.Place{Name: "Berlin", Latitude: 52.52, Longitude: 13.405}, false},
		{"boundary north pole", models.Place{Name: "North Pole", Latitude: 90, Longitude: 0}, false},
		{"boundary antimeridian", models.Place{Name: "Fiji", Latitude: -17.7, Longitude: 180}, false},
		{"latitude too high", models.Place{Name: "Nowhere", Latitude: 90.1, Longitude: 0}, true},
		{"latitude too low", models.Place{Name: "Nowhere", Latitude: -91, Longitude: 0}, true},
		{"longitude too high", models.Place{Name: "Nowhere", Latitude: 0, Longitude: 180.5}, true},
		{"longitude too low", models.Place{Name: "Nowhere", Latitude: 0, Longitude: -181}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlace(&tt.place)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsSearchableQuery(t *testing.T) {
	assert.True(t, IsSearchableQuery("ab"))
	assert.True(t, IsSearchableQuery("  Berlin  "))
	assert.False(t, IsSearchableQuery("a"))
	assert.False(t, IsSearchableQuery("  a  "))
	assert.False(t, IsSearchableQuery(""))
	assert.False(t, IsSearchableQuery("   "))
}

func TestIsNotEmpty(t *testing.T) {
	assert.True(t, IsNotEmpty("x"))
	assert.False(t, IsNotEmpty("   "))
	assert.False(t, IsNotEmpty(""))
}

func TestTrimAndValidate(t *testing.T) {
	trimmed, ok := TrimAndValidate("  Berlin  ")
	assert.True(t, ok)
	assert.Equal(t, "Berlin", trimmed)

	_, ok = TrimAndValidate("   ")
	assert.False(t, ok)
}
