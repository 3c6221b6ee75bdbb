package dataset

import (
	"fmt"
)

type Special int32

const (
	SpecialBOS Special = iota
	SpecialEOS
)

// TextProcessor encodes text into token ids without adding special
// tokens, and exposes the boundary id sequences for this tokenizer.
// Either boundary sequence may be empty or span multiple ids.
type TextProcessor interface {
	Encode(s string) ([]int32, error)
	Special(kind Special) []int32
}

// EncodedExample is the flat token/label view of one conversation.
// Labels parallel InputIDs; positions excluded from the loss hold
// IgnoreIndex.
type EncodedExample struct {
	InputIDs []int32
	Labels   []int32
}

// Truncate hard-cuts both sequences to at most max elements. Cutting
// through a token boundary is accepted, not adjusted.
func (e *EncodedExample) Truncate(max int) {
	if max >= 0 && len(e.InputIDs) > max {
		e.InputIDs = e.InputIDs[:max]
		e.Labels = e.Labels[:max]
	}
}

// segmentState tracks whether the next turn opens a fresh causal
// segment. A turn that omits its EOS leaves the stream in
// segmentContinue so the following turn joins it without a BOS.
type segmentState int

const (
	segmentStart segmentState = iota
	segmentContinue
)

// EncodeConversation linearizes a conversation into token ids and loss
// labels, then truncates to maxLength (non-positive means unlimited).
// Instructions, boundary tokens and separators never carry loss;
// outputs carry loss unless the turn masks them.
func EncodeConversation(tp TextProcessor, conversation Conversation, maxLength int) (*EncodedExample, error) {
	bos := tp.Special(SpecialBOS)
	eos := tp.Special(SpecialEOS)

	example := &EncodedExample{}
	state := segmentStart
	for i, turn := range conversation {
		inputIDs, err := tp.Encode(turn.Input)
		if err != nil {
			return nil, fmt.Errorf("encoding turn %d input: %w", i, err)
		}

		if state == segmentStart {
			example.append(bos, true)
		}
		example.append(inputIDs, true)

		outputIDs, err := tp.Encode(turn.Output)
		if err != nil {
			return nil, fmt.Errorf("encoding turn %d output: %w", i, err)
		}
		example.append(outputIDs, turn.MaskOutput)

		if turn.OmitEOS {
			state = segmentContinue
		} else {
			example.append(eos, turn.MaskOutput)
			state = segmentStart
		}

		if turn.Sep != "" {
			sepIDs, err := tp.Encode(turn.Sep)
			if err != nil {
				return nil, fmt.Errorf("encoding turn %d separator: %w", i, err)
			}
			example.append(sepIDs, true)
		}
	}

	if maxLength > 0 {
		example.Truncate(maxLength)
	}
	return example, nil
}

// append extends both sequences by ids, masking the label span when
// requested. Keeping the two appends together preserves the invariant
// len(InputIDs) == len(Labels) at every step.
func (e *EncodedExample) append(ids []int32, mask bool) {
	e.InputIDs = append(e.InputIDs, ids...)
	if mask {
		for range ids {
			e.Labels = append(e.Labels, IgnoreIndex)
		}
	} else {
		e.Labels = append(e.Labels, ids...)
	}
}
