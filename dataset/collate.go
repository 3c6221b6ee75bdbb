package dataset

import (
	"fmt"

	"github.com/pdevine/tensor"
)

// Record is one training example's full payload: the encoded
// conversation plus whatever modality tensors its source supplied.
// Only InputIDs and Labels are mandatory.
type Record struct {
	InputIDs []int32
	Labels   []int32

	// PixelValues holds the example's image tiles or frames. The leading
	// dimension varies per example and is preserved by collation.
	PixelValues *tensor.Dense

	// ImageGridTHW is per-image grid-shape metadata for patch-embedding
	// style vision towers.
	ImageGridTHW *tensor.Dense

	// GroundingFrames are the pixel tensors of a referring/segmentation
	// sub-task, one entry per frame. A single grounding image is a
	// one-element list. Nil means the example has none.
	GroundingFrames []*tensor.Dense

	// Masks are per-object segmentation masks, stacked by the collator
	// along a new leading axis. StackedMasks supplies them pre-stacked;
	// setting both is an error.
	Masks        []*tensor.Dense
	StackedMasks *tensor.Dense

	// VPOverallMask marks which pixel entries carry a visual prompt.
	VPOverallMask *tensor.Dense

	// PromptMasks are the visual prompt source masks, collected as-is.
	PromptMasks *tensor.Dense
}

// Batch is one collated training step.
type Batch struct {
	InputIDs      *tensor.Dense // (batch, seq) int32
	AttentionMask *tensor.Dense // (batch, seq) bool
	PositionIDs   *tensor.Dense // (batch, seq) int32
	Labels        *tensor.Dense // (batch, seq) int32

	// Optional modality fields, nil unless present somewhere in the batch.
	FramesPerBatch []int
	PixelValues    []*tensor.Dense
	ImageGridTHW   []*tensor.Dense
	VPOverallMask  *tensor.Dense
	PromptMasks    []*tensor.Dense
	GPixelValues   []*tensor.Dense
	Masks          []*tensor.Dense
}

// CollateOptions adjusts collation. The zero value is usable:
// DefaultPadTokenIndex padding and no alternate output modes.
type CollateOptions struct {
	PadIndex int32

	// ReturnHFFormat and VarlenAttn are recognized but unsupported;
	// setting either fails collation outright.
	ReturnHFFormat bool
	VarlenAttn     bool
}

// presence records, per modality, whether any record in the batch
// carries it. Computed in a first pass so the assembly pass can build
// fields unconditionally.
type presence struct {
	image      bool
	grid       bool
	grounding  bool
	mask       bool
	vp         bool
	promptMask bool
}

func scanPresence(records []Record) (presence, error) {
	var p presence
	for i, r := range records {
		if r.InputIDs == nil || r.Labels == nil {
			return p, fmt.Errorf("record %d is missing input ids or labels", i)
		}
		if len(r.InputIDs) != len(r.Labels) {
			return p, fmt.Errorf("record %d has %d input ids but %d labels", i, len(r.InputIDs), len(r.Labels))
		}
		if r.Masks != nil && r.StackedMasks != nil {
			return p, fmt.Errorf("record %d sets both Masks and StackedMasks", i)
		}

		p.image = p.image || r.PixelValues != nil
		p.grid = p.grid || r.ImageGridTHW != nil
		p.grounding = p.grounding || r.GroundingFrames != nil
		p.mask = p.mask || r.Masks != nil || r.StackedMasks != nil
		p.vp = p.vp || r.VPOverallMask != nil
		p.promptMask = p.promptMask || r.PromptMasks != nil
	}

	if p.vp != p.promptMask {
		return p, fmt.Errorf("inconsistent presence of visual prompts and prompt masks: vp=%t prompt_masks=%t", p.vp, p.promptMask)
	}

	return p, nil
}

// Collate merges records into one padded batch. Input ids are
// right-padded with the pad index and labels with IgnoreIndex; the
// attention mask is built from the recorded pre-pad lengths rather than
// by comparing ids against the pad index, since pad and EOS ids may
// coincide.
func Collate(records []Record, opts CollateOptions) (*Batch, error) {
	if opts.ReturnHFFormat {
		return nil, fmt.Errorf("hf format output is not supported")
	}
	if opts.VarlenAttn {
		return nil, fmt.Errorf("varlen attention is not supported")
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to collate")
	}

	has, err := scanPresence(records)
	if err != nil {
		return nil, err
	}

	batch := &Batch{}

	lengths := make([]int, len(records))
	seqLen := 0
	for i, r := range records {
		lengths[i] = len(r.InputIDs)
		seqLen = max(seqLen, len(r.InputIDs))
	}

	var vpMasks []*tensor.Dense
	for i, r := range records {
		if has.image {
			// pixel values are collected per record, never reshaped
			if r.PixelValues != nil {
				batch.PixelValues = append(batch.PixelValues, r.PixelValues)
			}
			if has.grid && r.ImageGridTHW != nil {
				batch.ImageGridTHW = append(batch.ImageGridTHW, r.ImageGridTHW)
			}
			if has.vp && r.PixelValues != nil {
				if r.VPOverallMask != nil {
					vpMasks = append(vpMasks, r.VPOverallMask)
				} else {
					// a record without a visual prompt contributes an
					// all-false vector, one entry per pixel tile
					vpMasks = append(vpMasks, allFalse(r.PixelValues.Shape()[0]))
				}
			}
		}

		if has.grounding && r.GroundingFrames != nil {
			batch.GPixelValues = append(batch.GPixelValues, r.GroundingFrames...)
			batch.FramesPerBatch = append(batch.FramesPerBatch, len(r.GroundingFrames))
		}

		if has.mask {
			switch {
			case r.StackedMasks != nil:
				batch.Masks = append(batch.Masks, r.StackedMasks)
			case len(r.Masks) > 0:
				stacked, err := stackMasks(r.Masks)
				if err != nil {
					return nil, fmt.Errorf("record %d: stacking %d masks: %w", i, len(r.Masks), err)
				}
				batch.Masks = append(batch.Masks, stacked)
			}
		}

		if has.promptMask && r.PromptMasks != nil {
			batch.PromptMasks = append(batch.PromptMasks, r.PromptMasks)
		}
	}

	// frames_per_batch travels with the image modality even though it is
	// filled by grounding examples; a grounding-only batch carries none.
	if has.image {
		if batch.FramesPerBatch == nil {
			batch.FramesPerBatch = []int{}
		}
	} else {
		batch.FramesPerBatch = nil
	}

	switch {
	case has.vp && len(vpMasks) == 1:
		batch.VPOverallMask = vpMasks[0]
	case has.vp && len(vpMasks) > 1:
		rest := make([]tensor.Tensor, len(vpMasks)-1)
		for i, m := range vpMasks[1:] {
			rest[i] = m
		}
		concatenated, err := tensor.Concat(0, vpMasks[0], rest...)
		if err != nil {
			return nil, fmt.Errorf("concatenating vp overall masks: %w", err)
		}
		batch.VPOverallMask = concatenated.(*tensor.Dense)
	}

	b := len(records)
	ids := make([]int32, b*seqLen)
	labels := make([]int32, b*seqLen)
	attention := make([]bool, b*seqLen)
	positions := make([]int32, b*seqLen)
	for i, r := range records {
		row := ids[i*seqLen : (i+1)*seqLen]
		copy(row, r.InputIDs)
		for j := lengths[i]; j < seqLen; j++ {
			row[j] = opts.PadIndex
		}

		labelRow := labels[i*seqLen : (i+1)*seqLen]
		copy(labelRow, r.Labels)
		for j := lengths[i]; j < seqLen; j++ {
			labelRow[j] = IgnoreIndex
		}

		for j := 0; j < lengths[i]; j++ {
			attention[i*seqLen+j] = true
		}

		// position ids run 0..seq-1 for every row, padding included
		for j := 0; j < seqLen; j++ {
			positions[i*seqLen+j] = int32(j)
		}
	}

	batch.InputIDs = tensor.New(tensor.WithShape(b, seqLen), tensor.WithBacking(ids))
	batch.Labels = tensor.New(tensor.WithShape(b, seqLen), tensor.WithBacking(labels))
	batch.AttentionMask = tensor.New(tensor.WithShape(b, seqLen), tensor.WithBacking(attention))
	batch.PositionIDs = tensor.New(tensor.WithShape(b, seqLen), tensor.WithBacking(positions))

	return batch, nil
}

func allFalse(n int) *tensor.Dense {
	return tensor.New(tensor.WithShape(n), tensor.WithBacking(make([]bool, n)))
}

// stackMasks joins per-object masks along a new leading axis. A single
// mask gains the axis by reshaping a copy, leaving the caller's tensor
// untouched.
func stackMasks(masks []*tensor.Dense) (*tensor.Dense, error) {
	if len(masks) > 1 {
		return masks[0].Stack(0, masks[1:]...)
	}

	clone, ok := masks[0].Clone().(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("unexpected mask clone type %T", masks[0].Clone())
	}
	if err := clone.Reshape(append([]int{1}, masks[0].Shape()...)...); err != nil {
		return nil, err
	}
	return clone, nil
}
