// Package dataset turns structured conversations into token and label
// sequences and collates heterogeneous multimodal records into padded
// batches ready for training.
package dataset

const (
	// IgnoreIndex marks a label position excluded from the training loss.
	IgnoreIndex int32 = -100

	// DefaultPadTokenIndex pads input ids when a batch mixes lengths.
	DefaultPadTokenIndex int32 = 0
)

// Turn is one input/output exchange within a conversation. The zero
// values of OmitEOS and MaskOutput give the default behavior: an EOS is
// appended after the output and the output contributes to the loss.
type Turn struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	System string `json:"system,omitempty"`

	// Sep is appended after the turn, encoded without loss.
	Sep string `json:"sep,omitempty"`

	// OmitEOS continues the causal segment into the next turn: no EOS is
	// appended here and the next turn starts without a fresh BOS.
	OmitEOS bool `json:"omit_eos,omitempty"`

	// MaskOutput excludes the output span from the loss.
	MaskOutput bool `json:"mask_output,omitempty"`
}

// Conversation is an ordered sequence of turns. Order is significant:
// the needs-BOS state carries across turns.
type Conversation []*Turn

// PromptTemplate formats raw turns into model-ready text. Instruction
// may reference {input} and {round}; System may reference {system}.
type PromptTemplate struct {
	Instruction string `json:"instruction" mapstructure:"instruction"`
	System      string `json:"system,omitempty" mapstructure:"system"`

	// Suffix is appended verbatim to every output.
	Suffix string `json:"suffix,omitempty" mapstructure:"suffix"`

	// SuffixAsEOS marks the suffix as the stop text, suppressing the
	// tokenizer EOS after each output.
	SuffixAsEOS bool `json:"suffix_as_eos,omitempty" mapstructure:"suffix_as_eos"`

	// Sep is carried onto every turn.
	Sep string `json:"sep,omitempty" mapstructure:"sep"`
}
