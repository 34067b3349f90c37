package analysis

import "errors"

var (
	// ErrLevelRegression is raised when a caller re-enters the traversal for
	// an already-populated name at a broader (less restrictive) level than it
	// was originally populated at; §5 disallows this as a programmer error,
	// not a data one.
	ErrLevelRegression = errors.New("re-entry at a broader level than the name was originally populated at")

	// ErrStubHasQueries signals an input NA marked stub=true but carrying
	// queries to classify, violating the stub invariant of §3.
	ErrStubHasQueries = errors.New("a stub name analysis must not carry queries")

	// ErrUnclassifiedResponsiveCause describes an EDNS responsive cause value
	// the classifier does not recognise. The classifier itself does not
	// return it: it records such a value as an errs.KindUnclassified entry.
	ErrUnclassifiedResponsiveCause = errors.New("unclassified non-empty responsive cause index")
)
