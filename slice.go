package resampler

import (
	"fmt"
)

// OutOfBoundsPolicy decides what Slice does with a region that reaches
// outside its source item.
type OutOfBoundsPolicy int

const (
	// OutOfBoundsError fails the item.
	OutOfBoundsError OutOfBoundsPolicy = iota

	// OutOfBoundsPad keeps the requested shape and writes the fill value
	// wherever the region lies outside the source.
	OutOfBoundsPad

	// OutOfBoundsTrimToShape shrinks the region to its intersection with
	// the source and writes that intersection at the destination origin.
	OutOfBoundsTrimToShape
)

// String returns the policy name.
func (p OutOfBoundsPolicy) String() string {
	switch p {
	case OutOfBoundsError:
		return "error"
	case OutOfBoundsPad:
		return "pad"
	case OutOfBoundsTrimToShape:
		return "trim"
	default:
		return fmt.Sprintf("OutOfBoundsPolicy(%d)", int(p))
	}
}

// Shape is the extent of one item: frames (rows) by channels (columns).
type Shape struct {
	Frames   int
	Channels int
}

// Region selects a rectangle of one item, anchored at (Frame, Channel).
type Region struct {
	Frame    int
	Channel  int
	Frames   int
	Channels int
}

// Slice copies one rectangular region per item from src into dst.
//
// Item i of src has extent srcShapes[i] and is addressed through srcDesc;
// the region regions[i] is written at the origin of item i of dst, which is
// addressed through dstDesc. Regions that reach outside their source are
// handled according to policy.
//
// Each ItemResult reports the frames and channels actually written, which
// differ from the request only under OutOfBoundsTrimToShape.
func Slice(
	src []float32, srcDesc Descriptor, srcShapes []Shape,
	dst []float32, dstDesc Descriptor, regions []Region,
	fill float32, policy OutOfBoundsPolicy,
) (*BatchResult, error) {
	if err := srcDesc.Validate(); err != nil {
		return nil, fmt.Errorf("source descriptor: %w", err)
	}
	if err := dstDesc.Validate(); err != nil {
		return nil, fmt.Errorf("destination descriptor: %w", err)
	}
	if policy < OutOfBoundsError || policy > OutOfBoundsTrimToShape {
		return nil, fmt.Errorf("%w: unknown out-of-bounds policy %d", ErrInvalidArgument, int(policy))
	}
	n := srcDesc.N
	if dstDesc.N != n || len(srcShapes) != n || len(regions) != n {
		return nil, fmt.Errorf("%w: batch arrays disagree on size: src=%d dst=%d shapes=%d regions=%d",
			ErrInvalidArgument, n, dstDesc.N, len(srcShapes), len(regions))
	}

	result := &BatchResult{Items: make([]ItemResult, n)}
	for i := range n {
		frames, channels, err := sliceItem(src, srcDesc, srcShapes[i], dst, dstDesc, regions[i], i, fill, policy)
		if err != nil {
			result.Items[i] = ItemResult{Index: i, Err: &ItemError{Index: i, Err: err}}
			continue
		}
		result.Items[i] = ItemResult{Index: i, OutputLength: frames, Channels: channels}
	}

	return result, result.Err()
}

// sliceItem copies one region and returns the shape written.
func sliceItem(
	src []float32, srcDesc Descriptor, shape Shape,
	dst []float32, dstDesc Descriptor, reg Region,
	i int, fill float32, policy OutOfBoundsPolicy,
) (frames, channels int, err error) {
	if shape.Frames < 0 || shape.Channels < 0 {
		return 0, 0, fmt.Errorf("%w: negative source shape %dx%d", ErrInvalidArgument, shape.Frames, shape.Channels)
	}
	if reg.Frames < 0 || reg.Channels < 0 {
		return 0, 0, fmt.Errorf("%w: negative region shape %dx%d", ErrInvalidArgument, reg.Frames, reg.Channels)
	}

	// intersection of the region with the source, in source coordinates
	f0 := max(reg.Frame, 0)
	f1 := min(reg.Frame+reg.Frames, shape.Frames)
	c0 := max(reg.Channel, 0)
	c1 := min(reg.Channel+reg.Channels, shape.Channels)
	inside := f0 == reg.Frame && c0 == reg.Channel &&
		f1 == reg.Frame+reg.Frames && c1 == reg.Channel+reg.Channels

	switch {
	case inside:
	case policy == OutOfBoundsError:
		return 0, 0, fmt.Errorf("%w: region %d:%d x %d:%d outside source %dx%d", ErrInvalidArgument,
			reg.Frame, reg.Frame+reg.Frames, reg.Channel, reg.Channel+reg.Channels, shape.Frames, shape.Channels)
	case policy == OutOfBoundsTrimToShape:
		reg = Region{Frame: f0, Channel: c0, Frames: max(f1-f0, 0), Channels: max(c1-c0, 0)}
	}

	if reg.Frames == 0 || reg.Channels == 0 {
		return reg.Frames, reg.Channels, nil
	}

	out, err := dstDesc.WritableView(dst, i, reg.Frames, reg.Channels)
	if err != nil {
		return 0, 0, err
	}

	var in []float32
	if f1 > f0 && c1 > c0 {
		if in, err = srcDesc.View(src, i, shape.Frames, shape.Channels); err != nil {
			return 0, 0, err
		}
	}

	for j := range reg.Frames {
		row := out[j*dstDesc.HStride : j*dstDesc.HStride+reg.Channels]
		sf := reg.Frame + j
		if sf < 0 || sf >= shape.Frames || in == nil {
			fillRow(row, fill)
			continue
		}
		for c := range row {
			sc := reg.Channel + c
			if sc < 0 || sc >= shape.Channels {
				row[c] = fill
				continue
			}
			row[c] = in[sf*srcDesc.HStride+sc]
		}
	}

	return reg.Frames, reg.Channels, nil
}

func fillRow(row []float32, v float32) {
	for c := range row {
		row[c] = v
	}
}
