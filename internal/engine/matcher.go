package engine

import (
	"fmt"

	"github.com/VigiaStudios/VigiaGuardGo/internal/extract"
	"github.com/VigiaStudios/VigiaGuardGo/internal/page"
	"github.com/VigiaStudios/VigiaGuardGo/internal/settings"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/logger"
)

const spamBadgeLabel = "Marcado por VigiaGuard (spam)"

// ScanResult counts what a single scan pass hid or badged.
type ScanResult struct {
	HiddenPosts         int
	BadgedPosts         int
	HiddenChats         int
	HiddenNotifications int
}

// Total returns the number of elements the pass hid.
func (r ScanResult) Total() int {
	return r.HiddenPosts + r.HiddenChats + r.HiddenNotifications
}

// Matcher applies a block snapshot to a document. It remembers what it
// already handled, so repeated scans over the same page are cheap and
// idempotent; Reset forgets everything when the page changes.
type Matcher struct {
	toggle    *settings.Toggle
	processed map[string]struct{}
}

// NewMatcher builds a matcher gated by the enable toggle.
func NewMatcher(toggle *settings.Toggle) *Matcher {
	return &Matcher{
		toggle:    toggle,
		processed: make(map[string]struct{}),
	}
}

// Reset clears the processed set. Called on every page navigation.
func (m *Matcher) Reset() {
	m.processed = make(map[string]struct{})
}

func (m *Matcher) seen(key string) bool {
	_, ok := m.processed[key]
	return ok
}

func (m *Matcher) mark(key string) {
	m.processed[key] = struct{}{}
}

// Scan walks the document and hides everything the snapshot flags.
// With the toggle off it does nothing.
func (m *Matcher) Scan(doc page.Document, snap *BlockSnapshot) ScanResult {
	var res ScanResult
	if !m.toggle.Enabled() || snap == nil {
		return res
	}

	for _, item := range doc.FeedItems() {
		hidden, badged := m.scanFeedItem(item, snap)
		if hidden {
			res.HiddenPosts++
		}
		if badged {
			res.BadgedPosts++
		}
	}
	for _, chat := range doc.Conversations() {
		if m.scanConversation(chat, snap) {
			res.HiddenChats++
		}
	}
	for _, note := range doc.Notifications() {
		if m.scanNotification(note, snap) {
			res.HiddenNotifications++
		}
	}

	if res.Total() > 0 || res.BadgedPosts > 0 {
		logger.Info(fmt.Sprintf("Ocultados %d posts, %d chats, %d notificaciones; %d marcados", res.HiddenPosts, res.HiddenChats, res.HiddenNotifications, res.BadgedPosts), "SCAN")
	}
	return res
}

// scanFeedItem applies both decisions to a post: membership in the
// reported lists hides it, membership in the spam lists attaches a
// visible badge without hiding. The decisions are independent, so a
// post can end up hidden, badged, or both.
func (m *Matcher) scanFeedItem(item page.Element, snap *BlockSnapshot) (hidden, badged bool) {
	postID := feedItemPostID(item)

	if postID != "" {
		if snap.HasReportedPost(postID) && !m.seen(postID) {
			item.Hide()
			m.mark(postID)
			hidden = true
		}
		if snap.HasSpamPost(postID) && !m.seen("spam-"+postID) {
			item.Annotate(spamBadgeLabel)
			m.mark("spam-" + postID)
			badged = true
		}
	}

	// Author match over the profile links of the item.
	for _, link := range item.Links() {
		handle, ok := extract.Username(link)
		if !ok {
			continue
		}
		handle = extract.NormalizeHandle(handle)
		if snap.HasReportedUser(handle) && !m.seen("user-"+handle) {
			item.Hide()
			m.mark("user-" + handle)
			hidden = true
		}
		if snap.HasSpamUser(handle) && !m.seen("spam-user-"+handle) {
			item.Annotate(spamBadgeLabel)
			m.mark("spam-user-" + handle)
			badged = true
		}
	}

	// Fallback for items without usable links: a plain text scan over
	// every known handle.
	text := item.Text()
	for handle := range snap.ReportedUsernames {
		if extract.TextContains(text, handle) && !m.seen("user-"+handle) {
			item.Hide()
			m.mark("user-" + handle)
			hidden = true
		}
	}
	for handle := range snap.SpamUsernames {
		if extract.TextContains(text, handle) && !m.seen("spam-user-"+handle) {
			item.Annotate(spamBadgeLabel)
			m.mark("spam-user-" + handle)
			badged = true
		}
	}
	return hidden, badged
}

func (m *Matcher) scanConversation(chat page.Element, snap *BlockSnapshot) bool {
	participant := extract.NormalizeHandle(chat.Text())
	if participant == "" || chat.Hidden() {
		return false
	}
	if snap.HasSpamUser(participant) || snap.HasReportedUser(participant) {
		chat.Hide()
		return true
	}
	return false
}

func (m *Matcher) scanNotification(note page.Element, snap *BlockSnapshot) bool {
	if note.Hidden() {
		return false
	}
	for _, link := range note.Links() {
		handle, ok := extract.Username(link)
		if !ok {
			continue
		}
		handle = extract.NormalizeHandle(handle)
		if snap.HasSpamUser(handle) || snap.HasReportedUser(handle) {
			note.Hide()
			return true
		}
	}
	return false
}

// CheckAndBlock hides the feed item addressed by postURL right away,
// without waiting for the next snapshot refresh.
func (m *Matcher) CheckAndBlock(doc page.Document, postURL string) bool {
	if !m.toggle.Enabled() {
		return false
	}
	postID, ok := extract.PostID(postURL)
	if !ok {
		return false
	}
	for _, item := range doc.FeedItems() {
		if feedItemPostID(item) == postID {
			item.Hide()
			m.mark(postID)
			return true
		}
	}
	return false
}

// feedItemPostID resolves the activity ID of a feed item from its URN
// attributes, falling back to the links it contains.
func feedItemPostID(item page.Element) string {
	for _, attr := range []string{"data-urn", "data-id"} {
		if v, ok := item.Attr(attr); ok {
			if id, ok := extract.PostID(v); ok {
				return id
			}
		}
	}
	for _, link := range item.Links() {
		if id, ok := extract.PostID(link); ok {
			return id
		}
	}
	return ""
}
