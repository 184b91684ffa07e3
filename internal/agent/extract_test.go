package agent

import "testing"

func TestExtractCode(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"python fence", "text\n```python\nx = 1\n```\nmore", "x = 1"},
		{"py fence after untagged", "```\nnot this\n```\n```py\ny = 2\n```", "y = 2"},
		{"untagged only", "```\nz = 3\n```", "z = 3"},
		{"other language ignored", "```bash\nls\n```", ""},
		{"bare code with result", "x = 1\nresult = {\"type\": \"number\", \"value\": x}", "x = 1\nresult = {\"type\": \"number\", \"value\": x}"},
		{"prose", "Sorry, I can't.", ""},
		{"think block stripped", "<think>```python\nwrong = 1\n```</think>\n```python\nright = 1\n```", "right = 1"},
		{"empty fence skipped", "```python\n```\n```python\nok = 1\n```", "ok = 1"},
	}
	for _, tc := range cases {
		if got := ExtractCode(tc.in); got != tc.want {
			t.Errorf("%s: ExtractCode() = %q, want %q", tc.name, got, tc.want)
		}
	}
}
