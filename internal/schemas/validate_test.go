package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSchemas_ValidJSON(t *testing.T) {
	for _, name := range []string{Languages} {
		t.Run(name, func(t *testing.T) {
			content, err := Load(name)
			require.NoError(t, err)

			var v interface{}
			assert.NoError(t, json.Unmarshal([]byte(content), &v))
		})
	}
}

func TestLoad_Unknown(t *testing.T) {
	_, err := Load("missing.schema.json")
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidate_Languages(t *testing.T) {
	valid := `{
		"en": {
			"enabled": true,
			"summary_source": "transcript",
			"summary_filename": "summary.txt",
			"summary_without_links_filename": "summary_without_links.txt",
			"flag_filename": "published_en.flag",
			"substack_url": "https://example.substack.com/publish/post",
			"substack_session_file": "secrets/session.json",
			"article_sources": [{"name": "Cyprus Mail", "tag": "CM", "file": "cyprus_articles.json"}]
		}
	}`

	tests := []struct {
		name      string
		doc       string
		wantField string
	}{
		{name: "valid", doc: valid},
		{
			name:      "bad summary source",
			doc:       `{"ru": {"enabled": true, "summary_source": "translate", "summary_filename": "a", "summary_without_links_filename": "b", "flag_filename": "c", "substack_url": "", "substack_session_file": ""}}`,
			wantField: "ru.summary_source",
		},
		{
			name:      "missing key",
			doc:       `{"el": {"enabled": true, "summary_source": "summarize_native"}}`,
			wantField: "el",
		},
		{
			name:      "source without tag",
			doc:       `{"en": {"enabled": true, "summary_source": "transcript", "summary_filename": "a", "summary_without_links_filename": "b", "flag_filename": "c", "substack_url": "", "substack_session_file": "", "article_sources": [{"name": "X", "file": "x.json"}]}}`,
			wantField: "en.article_sources.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Languages, []byte(tt.doc))
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, Languages, ve.Schema)
			fields := make([]string, 0, len(ve.Errors))
			for _, fe := range ve.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestValidateJSONString_MalformedSchema(t *testing.T) {
	err := ValidateJSONString(`{ "type": `, `{}`)
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Schema: Languages,
		Errors: []FieldError{{Field: "en.enabled", Message: "Invalid type"}},
	}
	assert.Equal(t, "validation against languages.schema.json failed:\n  1. en.enabled: Invalid type\n", err.Error())
}
