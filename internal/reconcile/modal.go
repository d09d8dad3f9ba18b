package reconcile

// Modal is the detail overlay of a screen: the selected item and whether it is shown.
// It is not safe for concurrent use; the owning screen serialises access.
type Modal[T any] struct {
	idOf     func(T) string
	selected T
	open     bool
}

// NewModal creates a closed modal
func NewModal[T any](idOf func(T) string) *Modal[T] {
	return &Modal[T]{idOf: idOf}
}

// Open shows item in the overlay
func (m *Modal[T]) Open(item T) {
	m.selected = item
	m.open = true
}

// Close hides the overlay and drops the selection
func (m *Modal[T]) Close() {
	var zero T
	m.selected = zero
	m.open = false
}

// Selected returns the open item
func (m *Modal[T]) Selected() (T, bool) {
	return m.selected, m.open
}

// SelectedID returns the id of the open item, "" when closed
func (m *Modal[T]) SelectedID() string {
	if !m.open {
		return ""
	}
	return m.idOf(m.selected)
}

// OnEdited swaps in the server's object when it is the one on display
func (m *Modal[T]) OnEdited(server T) {
	if m.open && m.idOf(m.selected) == m.idOf(server) {
		m.selected = server
	}
}

// OnDeleted closes the overlay when the deleted item is the one on display
func (m *Modal[T]) OnDeleted(id string) {
	if m.open && m.idOf(m.selected) == id {
		m.Close()
	}
}
