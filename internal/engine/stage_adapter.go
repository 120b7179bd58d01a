package engine

import (
	"github.com/tphakala/go-audio-convolver/internal/pipeline"
	"github.com/tphakala/simd/cpu"
)

// StageAdapter wraps an Engine to implement pipeline.Stage, so it can sit
// behind a pipeline.BlockAligner.
type StageAdapter struct {
	*Engine
}

var _ pipeline.Stage = (*StageAdapter)(nil)

// NewStageAdapter creates a StageAdapter wrapping e.
func NewStageAdapter(e *Engine) *StageAdapter {
	return &StageAdapter{Engine: e}
}

// GetLatency returns 0. Partitioned convolution adds no delay of its own.
func (s *StageAdapter) GetLatency() int { return 0 }

// GetBlockSize returns the chunk length the engine is exact for.
func (s *StageAdapter) GetBlockSize() int { return s.SegmentSize() }

// GetMemoryUsage returns approximate memory usage in bytes.
func (s *StageAdapter) GetMemoryUsage() int64 { return s.MemoryUsage() }

// GetSIMDInfo returns SIMD optimization info.
func (s *StageAdapter) GetSIMDInfo() string { return cpu.Info() }
