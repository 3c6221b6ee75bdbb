package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

var placeholderRegex = regexp2.MustCompile(`\{(\w+)\}`, regexp2.None)

// formatTemplate substitutes {name} placeholders from vars. A
// placeholder with no binding is an error, matching the behavior of
// format strings whose arguments are checked at expansion time.
func formatTemplate(tmpl string, vars map[string]string) (string, error) {
	var sb strings.Builder

	last := 0
	m, err := placeholderRegex.FindStringMatch(tmpl)
	for m != nil {
		name := m.Groups()[1].Capture.String()
		value, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("template references unknown placeholder {%s}", name)
		}

		sb.WriteString(tmpl[last:m.Index])
		sb.WriteString(value)
		last = m.Index + m.Length

		if m, err = placeholderRegex.FindNextMatch(m); err != nil {
			return "", err
		}
	}
	if err != nil {
		return "", err
	}

	sb.WriteString(tmpl[last:])
	return sb.String(), nil
}

// Apply expands the template over a conversation in place: each turn's
// input becomes the formatted instruction (with the system prompt
// prepended when present), the suffix is appended to each output, and
// the EOS and separator flags are set from the template.
func (t PromptTemplate) Apply(conversation Conversation) error {
	for i, turn := range conversation {
		inputText, err := formatTemplate(t.Instruction, map[string]string{
			"input": turn.Input,
			"round": strconv.Itoa(i + 1),
		})
		if err != nil {
			return fmt.Errorf("turn %d: %w", i, err)
		}

		if turn.System != "" {
			systemText, err := formatTemplate(t.System, map[string]string{"system": turn.System})
			if err != nil {
				return fmt.Errorf("turn %d: %w", i, err)
			}
			inputText = systemText + inputText
		}

		turn.Input = inputText

		if t.Suffix != "" {
			turn.Output += t.Suffix
		}

		turn.OmitEOS = t.SuffixAsEOS
		turn.Sep = t.Sep
	}

	return nil
}
