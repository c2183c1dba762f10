package schemas

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/cv-importer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateJSON_ValidJSON(t *testing.T) {
	schemaPath := filepath.Join("testdata", "valid_schema.json")
	jsonPath := filepath.Join("testdata", "valid_json.json")

	err := ValidateJSON(schemaPath, jsonPath)
	assert.NoError(t, err)
}

func TestValidateJSON_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		jsonFile string
	}{
		{"missing required field", "invalid_json.json"},
		{"wrong type", "type_mismatch.json"},
	}

	schemaPath := filepath.Join("testdata", "valid_schema.json")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(schemaPath, filepath.Join("testdata", tt.jsonFile))
			require.Error(t, err)

			validationErr, ok := err.(*ValidationError)
			require.True(t, ok, "error should be ValidationError type, got %T", err)
			assert.Greater(t, len(validationErr.Errors), 0)
		})
	}
}

func TestValidateJSON_NotFound(t *testing.T) {
	err := ValidateJSON("testdata/nonexistent_schema.json", filepath.Join("testdata", "valid_json.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = ValidateJSON(filepath.Join("testdata", "valid_schema.json"), "testdata/nonexistent_json.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSON_MalformedJSON(t *testing.T) {
	tmpDir := t.TempDir()
	malformedJSON := filepath.Join(tmpDir, "malformed.json")
	err := os.WriteFile(malformedJSON, []byte("{ invalid json }"), 0644)
	require.NoError(t, err)

	err = ValidateJSON(filepath.Join("testdata", "valid_schema.json"), malformedJSON)
	require.Error(t, err)
}

func TestValidateJSONString(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["person"],
		"properties": {
			"person": {
				"type": "object",
				"required": ["name"],
				"properties": {"name": {"type": "string"}}
			}
		}
	}`

	assert.NoError(t, ValidateJSONString(schemaContent, `{"person": {"name": "Jan"}}`))

	err := ValidateJSONString(schemaContent, `{"person": {}}`)
	require.Error(t, err)
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	require.NotEmpty(t, validationErr.Errors)
	assert.True(t, strings.HasPrefix(validationErr.Errors[0].Field, "person"))
}

func TestValidateJSONString_BadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 12}`, `{}`)
	require.Error(t, err)
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "1. name: is required")
	assert.Contains(t, errorMsg, "2. age: must be a number")
}

func TestValidateParseResultJSON_Fixture(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "parse_result.json"))
	require.NoError(t, err)

	assert.NoError(t, ValidateParseResultJSON(data))
}

func validResult() *types.ParseResult {
	r := types.NewParseResult()
	r.Personal.FullName = "Anna Nowak"
	r.Experience = append(r.Experience, types.ExperienceEntry{
		Position:     "Backend Engineer",
		Company:      "Acme Corp",
		StartDate:    "2020-03",
		IsCurrent:    true,
		Achievements: []string{},
	})
	r.Education = append(r.Education, types.EducationEntry{
		School:       "Warsaw University of Technology",
		StartDate:    "2014-01",
		EndDate:      "2019-01",
		Achievements: []string{},
	})
	r.Skills = append(r.Skills, types.SkillEntry{Name: "Go", Level: types.DefaultSkillLevel, Category: types.SkillCategoryTechnical})
	r.Fields[types.FieldFullName] = types.FieldOutcome{Found: true, Rule: "capitalized-words"}
	return r
}

func TestValidateParseResult(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *types.ParseResult)
		wantField string
	}{
		{
			name:   "valid",
			mutate: func(r *types.ParseResult) {},
		},
		{
			name:   "empty result",
			mutate: func(r *types.ParseResult) { *r = *types.NewParseResult() },
		},
		{
			name:      "bad date",
			mutate:    func(r *types.ParseResult) { r.Experience[0].StartDate = "March 2020" },
			wantField: "experience.0.start_date",
		},
		{
			name:      "current with end date",
			mutate:    func(r *types.ParseResult) { r.Experience[0].EndDate = "2021-01" },
			wantField: "experience.0",
		},
		{
			name:      "unknown category",
			mutate:    func(r *types.ParseResult) { r.Skills[0].Category = "hobby" },
			wantField: "skills.0.category",
		},
		{
			name: "too many skills",
			mutate: func(r *types.ParseResult) {
				for i := 0; i < types.MaxParsedSkills; i++ {
					r.Skills = append(r.Skills, r.Skills[0])
				}
			},
			wantField: "skills",
		},
		{
			name:      "nil achievements",
			mutate:    func(r *types.ParseResult) { r.Education[0].Achievements = nil },
			wantField: "education.0.achievements",
		},
		{
			name:      "unknown field outcome",
			mutate:    func(r *types.ParseResult) { r.Fields["phone"] = types.FieldOutcome{} },
			wantField: "fields",
		},
		{
			name:      "profile url without scheme",
			mutate:    func(r *types.ParseResult) { r.Personal.ProfileURL = "linkedin.com/in/anna" },
			wantField: "personal.profile_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validResult()
			tt.mutate(r)

			err := ValidateParseResult(r)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			validationErr, ok := err.(*ValidationError)
			require.True(t, ok, "got %T: %v", err, err)

			fields := make([]string, 0, len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.True(t, containsPrefix(fields, tt.wantField), "fields %v should include %s", fields, tt.wantField)
		})
	}
}

func TestValidateParseResult_Nil(t *testing.T) {
	err := ValidateParseResult(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "result is nil")
}

func TestResolveSchemaPath(t *testing.T) {
	path := ResolveSchemaPath(filepath.Join("testdata", "valid_schema.json"))
	assert.True(t, filepath.IsAbs(path))

	assert.Empty(t, ResolveSchemaPath("does/not/exist.json"))
}

func containsPrefix(values []string, prefix string) bool {
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}
	return false
}
