// Package page abstracts the rendered page the scan engine walks over.
// The engine only sees Documents and Elements, so the matcher logic is
// independent from how a snapshot was obtained.
package page

// Element is a single scannable region of the page: a feed item, a
// conversation entry or a notification row.
type Element interface {
	// Attr returns the value of an attribute and whether it is present.
	Attr(name string) (string, bool)
	// Links returns every href found inside the element.
	Links() []string
	// Text returns the visible text of the element. For conversation
	// entries this is the participant display name.
	Text() string
	// Hide removes the element from view, marking it so repeated scans
	// can tell it has already been handled.
	Hide()
	// Annotate attaches a visible label to the element without hiding it.
	Annotate(label string)
	// Hidden reports whether Hide was already applied.
	Hidden() bool
}

// Document is a scannable view of the page at one point in time.
type Document interface {
	// URL returns the address the document was loaded from.
	URL() string
	// FeedItems returns the post elements of the main feed.
	FeedItems() []Element
	// Conversations returns the chat list entries.
	Conversations() []Element
	// Notifications returns the notification rows.
	Notifications() []Element
}
