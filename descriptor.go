package resampler

import (
	"context"
	"fmt"
)

// Descriptor describes a batch of signals stored in one flat buffer.
// Element (item i, frame j, channel c) lives at i*NStride + j*HStride + c.
type Descriptor struct {
	// N is the number of items in the batch.
	N int

	// NStride is the element distance between the starts of consecutive items.
	NStride int

	// HStride is the element distance between consecutive frames of an item.
	// It must be at least the item's channel count.
	HStride int
}

// Validate checks the descriptor's own fields.
func (d Descriptor) Validate() error {
	if d.N < 0 {
		return fmt.Errorf("%w: negative batch size %d", ErrInvalidArgument, d.N)
	}
	if d.NStride < 0 || d.HStride <= 0 {
		return fmt.Errorf("%w: strides must be non-negative with HStride > 0, got n=%d h=%d",
			ErrInvalidArgument, d.NStride, d.HStride)
	}
	return nil
}

// View returns the part of buf holding frames×channels elements of item i.
// The view starts at the item's first element and is capped so appends
// cannot reach the next item.
func (d Descriptor) View(buf []float32, i, frames, channels int) ([]float32, error) {
	if i < 0 || i >= d.N {
		return nil, fmt.Errorf("%w: item %d outside batch of %d", ErrInvalidArgument, i, d.N)
	}
	if channels <= 0 || channels > d.HStride {
		return nil, fmt.Errorf("%w: %d channels do not fit frame stride %d", ErrInvalidArgument, channels, d.HStride)
	}
	if frames < 0 {
		return nil, fmt.Errorf("%w: negative frame count %d", ErrInvalidArgument, frames)
	}

	// products are bounded by division so huge strides cannot wrap
	if i > 0 && d.NStride > len(buf)/i {
		return nil, fmt.Errorf("%w: item %d with stride %d starts past buffer of %d", ErrBufferTooSmall, i, d.NStride, len(buf))
	}
	start := i * d.NStride
	if frames == 0 {
		if start > len(buf) {
			return nil, fmt.Errorf("%w: item %d starts at %d past buffer of %d", ErrBufferTooSmall, i, start, len(buf))
		}
		return buf[start:start:start], nil
	}

	room := len(buf) - start
	if channels > room || (frames > 1 && d.HStride > room/(frames-1)) {
		return nil, fmt.Errorf("%w: item %d needs %d frames of stride %d, buffer has %d elements left",
			ErrBufferTooSmall, i, frames, d.HStride, room)
	}
	end := start + d.extent(frames, channels)
	if end > len(buf) {
		return nil, fmt.Errorf("%w: item %d needs elements [%d, %d), buffer has %d", ErrBufferTooSmall, i, start, end, len(buf))
	}
	return buf[start:end:end], nil
}

// WritableView is View for destinations: when the batch holds more than one
// item, the item must end before the next one starts, so no two items can
// write the same element.
func (d Descriptor) WritableView(buf []float32, i, frames, channels int) ([]float32, error) {
	view, err := d.View(buf, i, frames, channels)
	if err != nil {
		return nil, err
	}
	if d.N > 1 && len(view) > d.NStride {
		return nil, fmt.Errorf("%w: item %d spans %d elements, overlapping the next item at stride %d",
			ErrInvalidArgument, i, len(view), d.NStride)
	}
	return view, nil
}

// extent is the element span of frames×channels, frames > 0.
func (d Descriptor) extent(frames, channels int) int {
	return (frames-1)*d.HStride + channels
}

// Packed reports whether frames of a channels-wide item are contiguous.
func (d Descriptor) Packed(channels int) bool {
	return d.HStride == channels
}

// gather copies a strided view into a contiguous interleaved buffer.
func gather(view []float32, frames, channels, hStride int) []float32 {
	out := make([]float32, frames*channels)
	for j := range frames {
		copy(out[j*channels:(j+1)*channels], view[j*hStride:j*hStride+channels])
	}
	return out
}

// scatter copies a contiguous interleaved buffer into a strided view.
func scatter(view, packed []float32, frames, channels, hStride int) {
	for j := range frames {
		copy(view[j*hStride:j*hStride+channels], packed[j*channels:(j+1)*channels])
	}
}

// ProcessTensor resamples a batch stored in flat buffers. Item i reads
// srcLength[i] frames of channels[i] channels through srcDesc and writes
// OutputLength(srcLength[i], inRate[i], outRate[i]) frames through dstDesc.
//
// Per-item arrays must all have srcDesc.N entries and dstDesc.N must equal
// srcDesc.N. Views that fall outside their buffer, and destination views
// that overlap the next item, fail only their own item.
// Items whose frame stride is wider than their channel count are packed
// into scratch buffers around the convolution.
func (r *Resampler) ProcessTensor(
	ctx context.Context,
	src []float32, srcDesc Descriptor,
	dst []float32, dstDesc Descriptor,
	inRate, outRate []float64,
	srcLength, channels []int,
) (*BatchResult, error) {
	if err := srcDesc.Validate(); err != nil {
		return nil, fmt.Errorf("source descriptor: %w", err)
	}
	if err := dstDesc.Validate(); err != nil {
		return nil, fmt.Errorf("destination descriptor: %w", err)
	}
	n := srcDesc.N
	if dstDesc.N != n || len(inRate) != n || len(outRate) != n || len(srcLength) != n || len(channels) != n {
		return nil, fmt.Errorf("%w: batch arrays disagree on size: src=%d dst=%d inRate=%d outRate=%d length=%d channels=%d",
			ErrInvalidArgument, n, dstDesc.N, len(inRate), len(outRate), len(srcLength), len(channels))
	}

	result := &BatchResult{Items: make([]ItemResult, n)}

	type pending struct {
		index   int
		dstView []float32
	}

	var (
		signals []Signal
		dsts    [][]float32
		items   []pending
	)

	for i := range n {
		sig := Signal{
			Length:   srcLength[i],
			Channels: channels[i],
			InRate:   inRate[i],
			OutRate:  outRate[i],
		}

		// item-level argument errors are reported by Process with an empty view
		if sig.Length <= 0 || sig.Channels <= 0 || !validRate(sig.InRate) || !validRate(sig.OutRate) {
			signals = append(signals, sig)
			dsts = append(dsts, nil)
			items = append(items, pending{index: i})
			continue
		}

		srcView, err := srcDesc.View(src, i, sig.Length, sig.Channels)
		if err != nil {
			result.Items[i] = ItemResult{Index: i, Err: &ItemError{Index: i, Err: err}}
			continue
		}
		outFrames := OutputLength(sig.Length, sig.InRate, sig.OutRate)
		dstView, err := dstDesc.WritableView(dst, i, outFrames, sig.Channels)
		if err != nil {
			result.Items[i] = ItemResult{Index: i, Err: &ItemError{Index: i, Err: err}}
			continue
		}

		if srcDesc.Packed(sig.Channels) {
			sig.Samples = srcView
		} else {
			sig.Samples = gather(srcView, sig.Length, sig.Channels, srcDesc.HStride)
		}

		out := dstView
		if !dstDesc.Packed(sig.Channels) {
			out = make([]float32, outFrames*sig.Channels)
		}

		signals = append(signals, sig)
		dsts = append(dsts, out)
		items = append(items, pending{index: i, dstView: dstView})
	}

	sub, _ := r.Process(ctx, dsts, signals)
	for k, item := range items {
		res := sub.Items[k]
		res.Index = item.index
		if ie, ok := res.Err.(*ItemError); ok {
			res.Err = &ItemError{Index: item.index, Err: ie.Err}
		}
		if res.Err == nil && !dstDesc.Packed(signals[k].Channels) {
			scatter(item.dstView, dsts[k], res.OutputLength, signals[k].Channels, dstDesc.HStride)
		}
		result.Items[item.index] = res
	}

	return result, result.Err()
}
