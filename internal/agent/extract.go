package agent

import (
	"regexp"
	"strings"
)

var (
	fenceRE = regexp.MustCompile("(?s)```[ \\t]*([A-Za-z0-9_+-]*)[^\\n]*\\n(.*?)```")
	thinkRE = regexp.MustCompile(`(?s)<think>.*?</think>`)
)

// ExtractCode pulls the python code out of a chat reply. A python-tagged fence
// wins over an untagged one; a reply with no fence is used as-is only when it
// already carries a result declaration.
func ExtractCode(reply string) string {
	reply = thinkRE.ReplaceAllString(reply, "")
	var untagged string
	for _, m := range fenceRE.FindAllStringSubmatch(reply, -1) {
		lang := strings.ToLower(m[1])
		body := strings.TrimSpace(m[2])
		if body == "" {
			continue
		}
		if lang == "python" || lang == "py" || lang == "python3" {
			return body
		}
		if lang == "" && untagged == "" {
			untagged = body
		}
	}
	if untagged != "" {
		return untagged
	}
	plain := strings.TrimSpace(reply)
	if strings.Contains(plain, "result = {") && !strings.Contains(plain, "```") {
		return plain
	}
	return ""
}
