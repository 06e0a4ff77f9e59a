package game

import "strings"

// BufferEvent reports what an edit did beyond mutating the buffer.
type BufferEvent int

const (
	// EventNone: the edit changed nothing of consequence.
	EventNone BufferEvent = iota
	// EventPenalty: the buffer filled up with a wrong answer. It has
	// been cleared; the caller must report one penalty server-side.
	EventPenalty
	// EventLocked: the submitted answer matched the key. No further
	// edits are accepted.
	EventLocked
)

// emptySlot marks an unfilled buffer position.
const emptySlot = rune(0)

// AnswerBox is the per-question edit state a player holds locally: a
// fixed-length character buffer sized to the answer key, a cursor, and
// a lock flag. It is never shared between clients; only its penalty and
// submit outcomes reach the server.
type AnswerBox struct {
	key       string
	slots     []rune
	cursor    int
	locked    bool
	penalties int
}

// NewAnswerBox creates an empty buffer for the given answer key. The
// key is matched case-insensitively; letters are stored uppercase.
func NewAnswerBox(answerKey string) *AnswerBox {
	key := strings.ToUpper(answerKey)
	return &AnswerBox{
		key:   key,
		slots: make([]rune, len([]rune(key))),
	}
}

// Insert places a letter into the first empty slot, regardless of the
// cursor. A full or locked buffer ignores the insert. Filling the last
// slot triggers the penalty check.
func (b *AnswerBox) Insert(r rune) BufferEvent {
	if b.locked {
		return EventNone
	}
	idx := b.firstEmpty()
	if idx < 0 {
		return EventNone
	}
	b.slots[idx] = []rune(strings.ToUpper(string(r)))[0]
	b.cursor = b.snapCursor()
	return b.checkPenalty()
}

// Delete clears the slot under the cursor if occupied, otherwise the
// nearest occupied slot scanning backward from the cursor. The cursor
// stays on the freed slot so the player can retype in place.
func (b *AnswerBox) Delete() {
	if b.locked {
		return
	}
	idx := b.cursor
	if idx >= len(b.slots) || b.slots[idx] == emptySlot {
		idx = -1
		for i := min(b.cursor, len(b.slots)-1); i >= 0; i-- {
			if b.slots[i] != emptySlot {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return
	}
	b.slots[idx] = emptySlot
	b.cursor = idx
}

// MoveCursor shifts the cursor by delta, clamped to [0, length]. The
// buffer itself is untouched.
func (b *AnswerBox) MoveCursor(delta int) {
	b.cursor += delta
	if b.cursor < 0 {
		b.cursor = 0
	}
	if b.cursor > len(b.slots) {
		b.cursor = len(b.slots)
	}
}

// Submit accepts the answer only when the buffer exactly equals the
// key. On acceptance the buffer locks and EventLocked is returned.
func (b *AnswerBox) Submit() BufferEvent {
	if b.locked || b.Value() != b.key {
		return EventNone
	}
	b.locked = true
	return EventLocked
}

// checkPenalty runs after every buffer change: a completely filled
// buffer that does not match the key counts as one penalty and is
// cleared for the next attempt.
func (b *AnswerBox) checkPenalty() BufferEvent {
	if b.firstEmpty() >= 0 {
		return EventNone
	}
	if b.Value() == b.key {
		return EventNone
	}
	b.penalties++
	for i := range b.slots {
		b.slots[i] = emptySlot
	}
	b.cursor = 0
	return EventPenalty
}

func (b *AnswerBox) firstEmpty() int {
	for i, r := range b.slots {
		if r == emptySlot {
			return i
		}
	}
	return -1
}

// snapCursor returns the first empty slot, or the buffer length when
// full.
func (b *AnswerBox) snapCursor() int {
	if idx := b.firstEmpty(); idx >= 0 {
		return idx
	}
	return len(b.slots)
}

// Value joins the occupied slots into the current attempt. Empty slots
// are skipped, so a partially filled buffer never equals the key.
func (b *AnswerBox) Value() string {
	var sb strings.Builder
	for _, r := range b.slots {
		if r != emptySlot {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Letters exposes the raw slots for rendering; empty slots are 0.
func (b *AnswerBox) Letters() []rune {
	out := make([]rune, len(b.slots))
	copy(out, b.slots)
	return out
}

func (b *AnswerBox) Cursor() int    { return b.cursor }
func (b *AnswerBox) Locked() bool   { return b.locked }
func (b *AnswerBox) Penalties() int { return b.penalties }
func (b *AnswerBox) Length() int    { return len(b.slots) }

// Full reports whether every slot is occupied.
func (b *AnswerBox) Full() bool { return b.firstEmpty() < 0 }
