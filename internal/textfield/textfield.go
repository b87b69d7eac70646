package textfield

// DefaultLimit is the query width used when no positive limit is configured.
const DefaultLimit = 50

// Field is a single-line edit buffer with a cursor.
// The cursor is a rune index and always satisfies 0 <= cursor <= len(content).
type Field struct {
	content []rune
	cursor  int
	limit   int
}

// New creates an empty field holding at most limit runes.
func New(limit int) Field {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Field{limit: limit}
}

// Value returns the current text.
func (f Field) Value() string {
	return string(f.content)
}

// Cursor returns the cursor position in runes.
func (f Field) Cursor() int {
	return f.cursor
}

// Len returns the content length in runes.
func (f Field) Len() int {
	return len(f.content)
}

// Limit returns the maximum content length.
func (f Field) Limit() int {
	if f.limit <= 0 {
		return DefaultLimit
	}
	return f.limit
}

// Insert puts r at the cursor and advances it. Full fields ignore the call.
func (f *Field) Insert(r rune) {
	if len(f.content) >= f.Limit() {
		return
	}
	// Copy so values handed out by earlier states never share a backing array.
	next := make([]rune, 0, len(f.content)+1)
	next = append(next, f.content[:f.cursor]...)
	next = append(next, r)
	next = append(next, f.content[f.cursor:]...)
	f.content = next
	f.cursor++
}

// DeleteBackward removes the rune before the cursor.
func (f *Field) DeleteBackward() {
	if f.cursor == 0 {
		return
	}
	next := make([]rune, 0, len(f.content)-1)
	next = append(next, f.content[:f.cursor-1]...)
	next = append(next, f.content[f.cursor:]...)
	f.content = next
	f.cursor--
}

func (f *Field) MoveLeft() {
	if f.cursor > 0 {
		f.cursor--
	}
}

func (f *Field) MoveRight() {
	if f.cursor < len(f.content) {
		f.cursor++
	}
}
