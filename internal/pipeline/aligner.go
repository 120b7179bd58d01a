package pipeline

import "fmt"

// BlockAligner re-blocks host buffers of any size into exact stage blocks.
//
// Input is queued until a whole block is available, each block is run
// through the stage in place, and results are queued for output. The output
// queue starts with one block of silence, so every call can be answered in
// full and the aligner adds exactly one block of latency.
type BlockAligner struct {
	stage   Stage
	block   int
	maxHost int

	in      *RingBuffer
	out     *RingBuffer
	scratch []float64
}

var _ Stage = (*BlockAligner)(nil)

// NewBlockAligner wraps stage for host blocks of at most maxHost samples.
func NewBlockAligner(stage Stage, maxHost int) (*BlockAligner, error) {
	block := stage.GetBlockSize()
	if block <= 0 || maxHost <= 0 {
		return nil, fmt.Errorf("%w: stage block %d, host block %d", ErrInvalidBlock, block, maxHost)
	}

	a := &BlockAligner{
		stage:   stage,
		block:   block,
		maxHost: maxHost,
		in:      NewRingBuffer(block + maxHost),
		out:     NewRingBuffer(outputBlocks*block + maxHost),
		scratch: make([]float64, block),
	}
	a.prime()
	return a, nil
}

func (a *BlockAligner) prime() {
	// Capacity always exceeds one block.
	_ = a.out.WriteZeros(a.block)
}

// ProcessTo runs src through the stage and writes the delayed result to dst.
func (a *BlockAligner) ProcessTo(dst, src []float64) error {
	if len(dst) != len(src) {
		return fmt.Errorf("%w: dst %d, src %d", ErrLengthMismatch, len(dst), len(src))
	}
	if len(src) > a.maxHost {
		return fmt.Errorf("%w: %d > %d", ErrBlockTooLarge, len(src), a.maxHost)
	}

	if err := a.in.Write(src); err != nil {
		return err
	}

	for a.in.Available() >= a.block {
		a.in.ReadInto(a.scratch)
		if err := a.stage.ProcessTo(a.scratch, a.scratch); err != nil {
			return err
		}
		if err := a.out.Write(a.scratch); err != nil {
			return err
		}
	}

	a.out.ReadInto(dst)
	return nil
}

// Reset clears both queues, re-primes the output and resets the stage.
func (a *BlockAligner) Reset() {
	a.in.Clear()
	a.out.Clear()
	a.prime()
	a.stage.Reset()
}

// GetLatency returns one block plus the stage's own latency.
func (a *BlockAligner) GetLatency() int { return a.block + a.stage.GetLatency() }

// GetBlockSize returns 0: any host block up to the maximum is accepted.
func (a *BlockAligner) GetBlockSize() int { return 0 }

// GetMemoryUsage returns approximate memory usage in bytes.
func (a *BlockAligner) GetMemoryUsage() int64 {
	own := int64(a.in.Capacity()+a.out.Capacity()+len(a.scratch)) * bytesPerFloat64
	return own + a.stage.GetMemoryUsage()
}

// MaxBlockSize returns the largest accepted host block.
func (a *BlockAligner) MaxBlockSize() int { return a.maxHost }
