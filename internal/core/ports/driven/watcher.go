package driven

// DocumentWatcher observes a document source for external changes so
// the viewer can reload it through the same identity-reset path as a
// document swap.
type DocumentWatcher interface {
	// Watch invokes onChange whenever the source at path changes.
	// The returned cancel stops watching.
	Watch(path string, onChange func()) (cancel func(), err error)
}
