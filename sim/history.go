package sim

const (
	historySize = 5
	// a repeat within this many generations counts as stagnation
	stagnationWindow = 3
)

// history keeps hashes of recent generations for cycle detection
type history struct {
	hashes []string
}

// record adds hash and reports whether it repeats one of the last
// stagnationWindow generations
func (h *history) record(hash string) bool {
	repeat := false
	for i := len(h.hashes) - 1; i >= 0 && i >= len(h.hashes)-stagnationWindow; i-- {
		if h.hashes[i] == hash {
			repeat = true
			break
		}
	}

	h.hashes = append(h.hashes, hash)
	if len(h.hashes) > historySize {
		h.hashes = h.hashes[1:]
	}
	return repeat
}

func (h *history) reset() {
	h.hashes = nil
}
