package engine

// Segmenter splits real sample buffers into half-length chunks and turns
// each one into a full-length spectrum with the second half zero padded.
type Segmenter struct {
	t       Transform
	fftSize int
	segSize int

	// frame is the zero-padded time-domain scratch frame fed to Forward.
	frame []complex128
}

// NewSegmenter creates a Segmenter bound to t.
func NewSegmenter(t Transform) *Segmenter {
	n := t.Len()
	return &Segmenter{
		t:       t,
		fftSize: n,
		segSize: n / segmentDivisor,
		frame:   make([]complex128, n),
	}
}

// SegmentSize returns the raw chunk length, fftSize/2.
func (s *Segmenter) SegmentSize() int { return s.segSize }

// SegmentCount returns ceil(n / SegmentSize()).
func (s *Segmenter) SegmentCount(n int) int {
	return (n + s.segSize - 1) / s.segSize
}

// TransformChunk writes the spectrum of chunk into dst.
// chunk holds at most SegmentSize() samples; anything shorter is zero padded.
// dst must hold fftSize bins. No allocation takes place.
func (s *Segmenter) TransformChunk(dst []complex128, chunk []float64) {
	frame := s.frame
	for i, v := range chunk {
		frame[i] = complex(v, 0)
	}
	clear(frame[len(chunk):])
	s.t.Forward(dst, frame)
}

// Segment returns one spectrum per chunk of buffer, in chunk order.
// It allocates and is meant for setup work such as building a FilterBank.
func (s *Segmenter) Segment(buffer []float64) [][]complex128 {
	count := s.SegmentCount(len(buffer))
	spectra := make([][]complex128, count)
	for i := range count {
		start := i * s.segSize
		end := min(start+s.segSize, len(buffer))
		spectra[i] = make([]complex128, s.fftSize)
		s.TransformChunk(spectra[i], buffer[start:end])
	}
	return spectra
}

// Segment splits buffer with a fresh gonum transform of size fftSize.
func Segment(buffer []float64, fftSize int) ([][]complex128, error) {
	t, err := NewTransform(BackendGonum, fftSize)
	if err != nil {
		return nil, err
	}
	return NewSegmenter(t).Segment(buffer), nil
}
