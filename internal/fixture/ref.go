package fixture

import "fmt"

// FileRef identifies a fixture file either by 0-based load order or by
// path. It replaces number-or-string dynamic dispatch with an explicit
// tagged value resolved by the session.
type FileRef struct {
	name    string
	index   int
	byIndex bool
}

// ByIndex returns a reference to the i-th loaded file.
func ByIndex(i int) FileRef {
	return FileRef{index: i, byIndex: true}
}

// ByName returns a reference to the file with the given path.
func ByName(path string) FileRef {
	return FileRef{name: path}
}

// Index returns the load-order index and true for an index reference.
func (r FileRef) Index() (int, bool) {
	return r.index, r.byIndex
}

// Name returns the path and true for a name reference.
func (r FileRef) Name() (string, bool) {
	if r.byIndex {
		return "", false
	}
	return r.name, true
}

// String returns a human-readable representation of the reference.
func (r FileRef) String() string {
	if r.byIndex {
		return fmt.Sprintf("file #%d", r.index)
	}
	return fmt.Sprintf("file %q", r.name)
}
