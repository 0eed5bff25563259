package game

const defaultThoughtCapacity = 60

// ThoughtEntry is a single line in the thought log.
type ThoughtEntry struct {
	Tick    int
	Label   string // e.g. "H1", "W3"
	Team    Team
	Message string
}

// ThoughtLog is a ring buffer of short agent narration for viewer side panels.
type ThoughtLog struct {
	entries []ThoughtEntry
	head    int
	count   int
}

// NewThoughtLog creates a thought log with a fixed capacity.
func NewThoughtLog(capacity int) *ThoughtLog {
	if capacity <= 0 {
		capacity = defaultThoughtCapacity
	}
	return &ThoughtLog{entries: make([]ThoughtEntry, capacity)}
}

// Add appends an entry, overwriting the oldest when full.
func (tl *ThoughtLog) Add(tick int, label string, team Team, msg string) {
	n := len(tl.entries)
	tl.entries[tl.head] = ThoughtEntry{
		Tick:    tick,
		Label:   label,
		Team:    team,
		Message: msg,
	}
	tl.head = (tl.head + 1) % n
	if tl.count < n {
		tl.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (tl *ThoughtLog) Recent() []ThoughtEntry {
	n := len(tl.entries)
	result := make([]ThoughtEntry, tl.count)
	for i := 0; i < tl.count; i++ {
		idx := (tl.head - tl.count + i + n) % n
		result[i] = tl.entries[idx]
	}
	return result
}

// Len returns how many entries are held.
func (tl *ThoughtLog) Len() int { return tl.count }
