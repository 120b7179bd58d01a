package pipeline

// Queued exposes queue occupancy for tests.
func (a *BlockAligner) Queued() (in, out int) {
	return a.in.Available(), a.out.Available()
}
