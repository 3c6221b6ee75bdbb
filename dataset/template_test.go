package dataset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatTemplate(t *testing.T) {
	type formatCase struct {
		Template string
		Vars     map[string]string
		Expected string
		WantErr  bool
	}

	cases := []formatCase{
		{
			Template: "### Human: {input}\n### Assistant: ",
			Vars:     map[string]string{"input": "hello"},
			Expected: "### Human: hello\n### Assistant: ",
		},
		{
			Template: "[Round {round}] {input}",
			Vars:     map[string]string{"input": "hi", "round": "2"},
			Expected: "[Round 2] hi",
		},
		{
			Template: "no placeholders",
			Vars:     nil,
			Expected: "no placeholders",
		},
		{
			Template: "{input} and {missing}",
			Vars:     map[string]string{"input": "x"},
			WantErr:  true,
		},
	}

	for _, c := range cases {
		actual, err := formatTemplate(c.Template, c.Vars)
		if c.WantErr {
			if err == nil {
				t.Errorf("%q: expected error", c.Template)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", c.Template, err)
			continue
		}
		if actual != c.Expected {
			t.Errorf("%q: got %q, want %q", c.Template, actual, c.Expected)
		}
	}
}

func TestTemplateApply(t *testing.T) {
	template := PromptTemplate{
		Instruction: "<|user|>{input} ({round})<|assistant|>",
		System:      "<|system|>{system}\n",
		Suffix:      "<|end|>",
		SuffixAsEOS: true,
		Sep:         "\n",
	}

	conversation := Conversation{
		{Input: "first question", Output: "first answer", System: "be terse"},
		{Input: "second question", Output: "second answer"},
	}

	if err := template.Apply(conversation); err != nil {
		t.Fatal(err)
	}

	expected := Conversation{
		{
			Input:   "<|system|>be terse\n<|user|>first question (1)<|assistant|>",
			Output:  "first answer<|end|>",
			System:  "be terse",
			Sep:     "\n",
			OmitEOS: true,
		},
		{
			Input:   "<|user|>second question (2)<|assistant|>",
			Output:  "second answer<|end|>",
			Sep:     "\n",
			OmitEOS: true,
		},
	}

	if diff := cmp.Diff(conversation, expected); diff != "" {
		t.Errorf("mismatch (-got +want):\n%s", diff)
	}
}

func TestTemplateApplyDefaults(t *testing.T) {
	template := PromptTemplate{Instruction: "{input}"}

	conversation := Conversation{{Input: "q", Output: "a", MaskOutput: true}}
	if err := template.Apply(conversation); err != nil {
		t.Fatal(err)
	}

	turn := conversation[0]
	if turn.OmitEOS {
		t.Error("OmitEOS should stay false without SuffixAsEOS")
	}
	if turn.Sep != "" {
		t.Errorf("Sep = %q, want empty", turn.Sep)
	}
	if !turn.MaskOutput {
		t.Error("Apply must not touch MaskOutput")
	}
	if turn.Output != "a" {
		t.Errorf("Output = %q, want unchanged", turn.Output)
	}
}

func TestTemplateApplyBadPlaceholder(t *testing.T) {
	template := PromptTemplate{Instruction: "{inpt}"}

	err := template.Apply(Conversation{{Input: "q", Output: "a"}})
	if err == nil {
		t.Fatal("expected formatting error")
	}
}
