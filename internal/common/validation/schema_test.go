// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Resource Schema
// ==========================

func TestValidateResource(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantValid bool
		field     string
	}{
		{
			name:      "minimal resource",
			doc:       `{"basic_info": {"id": "r1"}}`,
			wantValid: true,
		},
		{
			name: "full resource with nulls",
			doc: `{
				"basic_info": {"id": "r1", "title_en": "A", "title_es": null, "languages": ["en"],
				               "contact_email": null, "coordinates": {"latitude": 34.8, "longitude": null}},
				"eligibility": {"income_requirements": {"income_brackets": ["low"]}, "service_area": null},
				"service_details": {"appointment_required": null, "hours": {"monday": "9-5"}}
			}`,
			wantValid: true,
		},
		{
			name:      "missing basic_info",
			doc:       `{"eligibility": {}}`,
			wantValid: true,
		},
		{
			name:      "null basic_info",
			doc:       `{"basic_info": null}`,
			wantValid: true,
		},
		{
			name:      "numeric id",
			doc:       `{"basic_info": {"id": 7}}`,
			wantValid: false,
			field:     "basic_info.id",
		},
		{
			name:      "latitude out of range still decodes",
			doc:       `{"basic_info": {"coordinates": {"latitude": 123.0, "longitude": 0}}}`,
			wantValid: true,
		},
		{
			name:      "latitude as string",
			doc:       `{"basic_info": {"coordinates": {"latitude": "34.8", "longitude": 0}}}`,
			wantValid: false,
			field:     "basic_info.coordinates.latitude",
		},
		{
			name:      "languages not an array",
			doc:       `{"basic_info": {"languages": "en"}}`,
			wantValid: false,
			field:     "basic_info.languages",
		},
		{
			name:      "walk-in flag as string",
			doc:       `{"basic_info": {}, "service_details": {"walk_in_accepted": "yes"}}`,
			wantValid: false,
			field:     "service_details.walk_in_accepted",
		},
		{
			name:      "not json",
			doc:       `{"basic_info":`,
			wantValid: false,
			field:     "(root)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateResource([]byte(tt.doc))
			assert.Equal(t, tt.wantValid, result.Valid, result.Summary())
			if tt.field != "" {
				assert.True(t, result.HasErrors(tt.field), "expected error on %s, got %v", tt.field, result.GetErrorMessages())
			}
		})
	}
}

// ==========================
// Match Request Schema
// ==========================

func TestValidateMatchRequest(t *testing.T) {
	tests := []struct {
		name      string
		doc       map[string]interface{}
		wantValid bool
		field     string
	}{
		{"empty request", map[string]interface{}{}, true, ""},
		{"typical request", map[string]interface{}{"language": "es", "zipcode": "29605", "age": 34, "minScore": 0.6, "maxResults": 5}, true, ""},
		{"decoded json numbers", map[string]interface{}{"age": float64(40), "latitude": 34.85, "longitude": -82.39}, true, ""},
		{"null fields", map[string]interface{}{"language": nil, "zipcode": nil}, true, ""},
		{"negative age", map[string]interface{}{"age": -1}, false, "age"},
		{"fractional age", map[string]interface{}{"age": 3.5}, false, "age"},
		{"latitude out of range", map[string]interface{}{"latitude": 95.0}, false, "latitude"},
		{"numeric zipcode", map[string]interface{}{"zipcode": 29605}, false, "zipcode"},
		{"string max results", map[string]interface{}{"maxResults": "ten"}, false, "maxResults"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateMatchRequest(tt.doc)
			assert.Equal(t, tt.wantValid, result.Valid, result.Summary())
			if tt.field != "" {
				assert.True(t, result.HasErrors(tt.field), result.Summary())
			}
		})
	}
}

func TestValidationResultHelpers(t *testing.T) {
	result := &ValidationResult{
		Valid: false,
		Errors: []ValidationError{
			{Field: "age", Message: "must be >= 0"},
			{Field: "zipcode", Message: "invalid type"},
		},
	}

	assert.Equal(t, []string{"age: must be >= 0", "zipcode: invalid type"}, result.GetErrorMessages())
	assert.Equal(t, "age: must be >= 0; zipcode: invalid type", result.Summary())
	assert.True(t, result.HasErrors("age"))
	assert.False(t, result.HasErrors("language"))
}
