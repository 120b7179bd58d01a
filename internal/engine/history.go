package engine

// HistoryRing keeps the K most recent input spectra, newest at index 0.
//
// All slots live in one arena allocated at construction. Pushing moves the
// head back one slot and overwrites the oldest spectrum in place, so the
// ring never grows and never allocates after NewHistoryRing.
type HistoryRing struct {
	arena  []complex128
	slots  [][]complex128
	head   int
	pushes int
}

// NewHistoryRing creates a ring of k zeroed spectra of fftSize bins each.
func NewHistoryRing(k, fftSize int) *HistoryRing {
	arena := make([]complex128, k*fftSize)
	slots := make([][]complex128, k)
	for i := range slots {
		slots[i] = arena[i*fftSize : (i+1)*fftSize : (i+1)*fftSize]
	}
	return &HistoryRing{arena: arena, slots: slots}
}

// Advance evicts the oldest spectrum and returns its slot as the new index 0.
// The caller must overwrite every bin of the returned slice.
func (h *HistoryRing) Advance() []complex128 {
	h.head--
	if h.head < 0 {
		h.head = len(h.slots) - 1
	}
	h.pushes++
	return h.slots[h.head]
}

// Push copies spectrum into the front of the ring.
func (h *HistoryRing) Push(spectrum []complex128) {
	copy(h.Advance(), spectrum)
}

// At returns the spectrum pushed k blocks ago.
func (h *HistoryRing) At(k int) []complex128 {
	i := h.head + k
	if i >= len(h.slots) {
		i -= len(h.slots)
	}
	return h.slots[i]
}

// Len returns the fixed capacity K.
func (h *HistoryRing) Len() int { return len(h.slots) }

// Filled returns how many slots hold pushed spectra rather than initial silence.
func (h *HistoryRing) Filled() int { return min(h.pushes, len(h.slots)) }

// Reset zeroes every slot.
func (h *HistoryRing) Reset() {
	clear(h.arena)
	h.head = 0
	h.pushes = 0
}

// MemoryUsage returns the arena size in bytes.
func (h *HistoryRing) MemoryUsage() int64 {
	return int64(cap(h.arena)) * bytesPerComplex128
}
