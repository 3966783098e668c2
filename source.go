package acorn

// Source records how [Injector.Build] obtained an instance.
type Source int

const (
	// SourceBinding means the instance came from a registered factory.
	SourceBinding Source = iota

	// SourceConstructor means the instance was assembled by invoking a
	// selected constructor with recursively built arguments.
	SourceConstructor
)

// String returns the human-readable name of the source.
func (s Source) String() string {
	switch s {
	case SourceBinding:
		return "binding"
	case SourceConstructor:
		return "constructor"
	default:
		return "unknown"
	}
}
