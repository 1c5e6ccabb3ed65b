package report

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestMarkdownParser_PlainMarkdownWithoutSentinel(t *testing.T) {
	p := &MarkdownParser{}

	plain := "# Some Document\n\nJust Markdown with no lineprof sentinel.\n"
	_, err := p.Parse([]byte(plain))
	if err == nil {
		t.Fatal("expected error for plain Markdown without sentinel, got nil")
	}
	if !strings.Contains(err.Error(), "not a valid lineprof report") {
		t.Errorf("unexpected error: %q", err.Error())
	}
}

func TestMarkdownParser_CorruptedPayloads(t *testing.T) {
	badJSON := base64.StdEncoding.EncodeToString([]byte("this is not json {{{"))
	cases := []struct {
		name    string
		content string
	}{
		{"corrupted base64", versionSentinel + "\n" + dataPrefix + "!!!not-valid-base64!!!" + dataSuffix + "\n"},
		{"missing payload", versionSentinel + "\n\n# Line profile\n"},
		{"unterminated payload", versionSentinel + "\n" + dataPrefix + "abcd\n"},
		{"invalid embedded JSON", versionSentinel + "\n" + dataPrefix + badJSON + dataSuffix + "\n"},
	}

	p := &MarkdownParser{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Parse([]byte(tc.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "not a valid lineprof report") {
				t.Errorf("unexpected error: %q", err.Error())
			}
		})
	}
}

func TestJSONParser_MalformedJSON(t *testing.T) {
	p := &JSONParser{}

	cases := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"truncated object", `{"run": {`},
		{"plain text", "not json at all"},
		{"array instead of object", `[1, 2, 3]`},
		{"negative line time", `{"files":[{"path":"a.sh","lines":[-1]}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Parse([]byte(tc.input))
			if err == nil {
				t.Fatalf("expected error for malformed JSON input %q, got nil", tc.input)
			}
			if !strings.Contains(err.Error(), "failed to parse JSON report") {
				t.Errorf("unexpected error: %q", err.Error())
			}
		})
	}
}

func TestParserForSniffsFormat(t *testing.T) {
	if _, ok := ParserFor([]byte(versionSentinel + "\n")).(*MarkdownParser); !ok {
		t.Error("sentinel content should select the Markdown parser")
	}
	if _, ok := ParserFor([]byte(`{"run":{}}`)).(*JSONParser); !ok {
		t.Error("other content should select the JSON parser")
	}
}
