package llm

import "testing"

func TestStripCodeFence(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n[1, 2]\n```  ", `[1, 2]`},
		{"  \"dinner\"  ", `"dinner"`},
	}
	for _, tc := range cases {
		if got := StripCodeFence(tc.in); got != tc.want {
			t.Errorf("StripCodeFence(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestNewGeminiClient_EmptyKey(t *testing.T) {
	if _, err := NewGeminiClient(t.Context(), "", ""); err == nil {
		t.Error("Expected an error for an empty API key, got nil")
	}
}
