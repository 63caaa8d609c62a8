package colext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecostats/dynocc-go/internal/errors"
)

func TestSurveyDesignValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		design  SurveyDesign
		wantErr bool
	}{
		{"valid", SurveyDesign{Sites: 10, Years: 3, Occasions: 2}, false},
		{"minimal", SurveyDesign{Sites: 1, Years: 2, Occasions: 1}, false},
		{"no sites", SurveyDesign{Sites: 0, Years: 3, Occasions: 2}, true},
		{"single season", SurveyDesign{Sites: 10, Years: 1, Occasions: 2}, true},
		{"no occasions", SurveyDesign{Sites: 10, Years: 3, Occasions: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.design.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestColumnMapping(t *testing.T) {
	t.Parallel()

	d := SurveyDesign{Sites: 2, Years: 3, Occasions: 2}
	assert.Equal(t, 6, d.SecondaryPeriods())

	// Columns group by year, occasion fastest.
	assert.Equal(t, 0, d.Column(0, 0))
	assert.Equal(t, 1, d.Column(0, 1))
	assert.Equal(t, 2, d.Column(1, 0))
	assert.Equal(t, 5, d.Column(2, 1))

	for col := 0; col < d.SecondaryPeriods(); col++ {
		year, occ := d.YearOccasion(col)
		assert.Equal(t, col, d.Column(year, occ))
	}
}
