package format

import (
	"errors"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Language
	}{
		{"json object", `{"openapi":"3.0.0"}`, JSON},
		{"json with whitespace", "\n  {\"a\": [1, 2]}\n", JSON},
		{"yaml mapping", "openapi: 3.0.0\ninfo:\n  title: Pets\n", YAML},
		{"yaml flow with unquoted keys", "{openapi: 3.1.0}", YAML},
		{"yaml plain scalar", "just some prose", YAML},
		{"unclosed flow", "{unclosed: [", Unrecognized},
		{"empty", "", Unrecognized},
		{"whitespace only", "   \n\t", Unrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectLanguage([]byte(tt.input))
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestDetectStandard(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected Standard
	}{
		{"openapi", map[string]any{"openapi": "3.0.3"}, OpenAPI},
		{"arazzo", map[string]any{"arazzo": "1.0.0"}, Arazzo},
		{"arazzo wins over openapi", map[string]any{"arazzo": "1.0.0", "openapi": "3.1.0"}, Arazzo},
		{"swagger", map[string]any{"swagger": "2.0"}, None},
		{"not a mapping", []any{"openapi"}, None},
		{"nil", nil, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectStandard(tt.input)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestLanguageFromFilename(t *testing.T) {
	tests := map[string]Language{
		"api.yaml":     YAML,
		"API.YML":      YAML,
		"api.json":     JSON,
		"api.txt":      Unrecognized,
		"no-extension": Unrecognized,
	}
	for name, expected := range tests {
		if got := LanguageFromFilename(name); got != expected {
			t.Errorf("LanguageFromFilename(%q): expected %q, got %q", name, expected, got)
		}
	}
}

func TestParseYAMLNormalizesKeys(t *testing.T) {
	text := []byte("responses:\n  200:\n    description: ok\n")
	obj, err := Parse(text, YAML)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	root, ok := obj.(map[string]any)
	if !ok {
		t.Fatalf("Expected map[string]any root, got %T", obj)
	}
	responses, ok := root["responses"].(map[string]any)
	if !ok {
		t.Fatalf("Expected map[string]any responses, got %T", root["responses"])
	}
	if _, ok := responses["200"]; !ok {
		t.Errorf("Expected integer key to be normalized to \"200\", got %v", responses)
	}

	if _, err := ToJSON(obj); err != nil {
		t.Errorf("Expected normalized tree to encode as JSON, got %v", err)
	}
}

func TestParseUnrecognized(t *testing.T) {
	if _, err := Parse([]byte("{}"), Unrecognized); !errors.Is(err, ErrUnrecognizedMarkup) {
		t.Errorf("Expected ErrUnrecognizedMarkup, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLang  Language
		wantErr   error
		wantTitle string
	}{
		{
			name:      "openapi json",
			input:     `{"openapi":"3.0.0","info":{"title":"Pets","version":"1"}}`,
			wantLang:  JSON,
			wantTitle: "Pets",
		},
		{
			name:      "openapi yaml",
			input:     "openapi: 3.0.0\ninfo:\n  title: Shop\n  version: '2'\n",
			wantLang:  YAML,
			wantTitle: "Shop",
		},
		{
			name:     "swagger 2",
			input:    `{"swagger": "2.0"}`,
			wantLang: JSON,
			wantErr:  ErrUnrecognizedStandard,
		},
		{
			name:     "arazzo",
			input:    "arazzo: 1.0.0\n",
			wantLang: YAML,
			wantErr:  ErrArazzoNotImplemented,
		},
		{
			name:     "prose",
			input:    "hello world",
			wantLang: YAML,
			wantErr:  ErrUnrecognizedStandard,
		},
		{
			name:     "garbage",
			input:    "{unclosed: [",
			wantLang: Unrecognized,
			wantErr:  ErrUnrecognizedMarkup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, obj, err := Classify([]byte(tt.input))
			if lang != tt.wantLang {
				t.Errorf("Expected language %q, got %q", tt.wantLang, lang)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected error %v, got %v", tt.wantErr, err)
				}
				if obj != nil {
					t.Errorf("Expected nil object on error, got %v", obj)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			info, _ := obj["info"].(map[string]any)
			if info["title"] != tt.wantTitle {
				t.Errorf("Expected title %q, got %v", tt.wantTitle, info["title"])
			}
		})
	}
}

func TestStandardErrorMessage(t *testing.T) {
	if ErrUnrecognizedStandard.Error() != "not a recognized standard" {
		t.Errorf("Unexpected message: %s", ErrUnrecognizedStandard.Error())
	}
}
