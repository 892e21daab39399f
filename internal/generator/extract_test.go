package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantTitle string
		wantDesc  string
		wantErr   bool
	}{
		{
			name:      "object surrounded by prose",
			raw:       `blah {"title":"A","description":"B"} blah`,
			wantTitle: "A",
			wantDesc:  "B",
		},
		{
			name:    "no braces",
			raw:     "Just breathe and relax.",
			wantErr: true,
		},
		{
			name:    "trailing comma",
			raw:     `{"title":"A","description":"B",}`,
			wantErr: true,
		},
		{
			name:    "unbalanced",
			raw:     `{"title":"A","description":"B"`,
			wantErr: true,
		},
		{
			name:      "nested object",
			raw:       `Sure! {"title":"Breathe","description":"Slowly","meta":{"tone":"calm"}} Enjoy.`,
			wantTitle: "Breathe",
			wantDesc:  "Slowly",
		},
		{
			name:      "braces inside strings",
			raw:       `{"title":"Use {N} breaths","description":"Close } with care"}`,
			wantTitle: "Use {N} breaths",
			wantDesc:  "Close } with care",
		},
		{
			name:      "escaped quotes",
			raw:       `{"title":"Say \"hi\"","description":"ok"}`,
			wantTitle: `Say "hi"`,
			wantDesc:  "ok",
		},
		{
			name:      "markdown fence",
			raw:       "```json\n{\"title\":\"Fence\",\"description\":\"Inside\"}\n```",
			wantTitle: "Fence",
			wantDesc:  "Inside",
		},
		{
			name:      "first usable object wins",
			raw:       `{"note":"skip"} then {"title":"First","description":"1"} and {"title":"Second","description":"2"}`,
			wantTitle: "First",
			wantDesc:  "1",
		},
		{
			name:      "malformed then valid",
			raw:       `{"title": oops} {"title":"Valid","description":"yes"}`,
			wantTitle: "Valid",
			wantDesc:  "yes",
		},
		{
			name:      "usable object nested in wrapper",
			raw:       `{"card":{"title":"Inner","description":"deep"}}`,
			wantTitle: "Inner",
			wantDesc:  "deep",
		},
		{
			name:    "empty strings are not usable",
			raw:     `{"title":"","description":"   "}`,
			wantErr: true,
		},
		{
			name:      "cyrillic text",
			raw:       `Вот: {"title":"Дыши","description":"Медленно"}`,
			wantTitle: "Дыши",
			wantDesc:  "Медленно",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ExtractJSONObject(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnparseableOutput)
				assert.Nil(t, obj)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, obj["title"])
			assert.Equal(t, tt.wantDesc, obj["description"])
		})
	}
}

func TestMatchingBrace(t *testing.T) {
	s := `x{"a":{"b":"}"}}y`
	assert.Equal(t, len(s)-2, matchingBrace(s, 1))
	assert.Equal(t, -1, matchingBrace(`{"a":1`, 0))
}
