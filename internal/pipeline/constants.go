package pipeline

// Block aligner buffer sizing.
const (
	// outputBlocks is how many whole stage blocks the output ring must hold
	// on top of one host block: the primed block plus one partial remainder.
	outputBlocks = 2

	bytesPerFloat64 = 8
)
