package models

import (
	"errors"
	"time"
)

// BlockType represents the list a blocked user belongs to
type BlockType string

const (
	BlockTypeSuspicious BlockType = "suspicious"
	BlockTypeSpam       BlockType = "spam"
	BlockTypeAll        BlockType = "all" // solo para lecturas
)

// Valid reports whether the block type can be used in a write operation
func (t BlockType) Valid() bool {
	return t == BlockTypeSuspicious || t == BlockTypeSpam
}

// ValidQuery reports whether the block type can be used in a read query
func (t BlockType) ValidQuery() bool {
	return t.Valid() || t == BlockTypeAll
}

// ReportType represents the reason a post was reported
type ReportType string

const (
	ReportTypeSpam      ReportType = "spam"
	ReportTypeNotUseful ReportType = "notUseful"
	ReportTypeAll       ReportType = "all" // solo para lecturas
)

// Valid reports whether the report type can be used in a write operation
func (t ReportType) Valid() bool {
	return t == ReportTypeSpam || t == ReportTypeNotUseful
}

// ValidQuery reports whether the report type can be used in a read query
func (t ReportType) ValidQuery() bool {
	return t.Valid() || t == ReportTypeAll
}

var (
	ErrAlreadyBlocked = errors.New("la entrada ya existe en la lista de bloqueo")
	ErrNotBlocked     = errors.New("la entrada no existe en la lista de bloqueo")
)

// BlockedPost is a denormalized block entry for a reported post
type BlockedPost struct {
	PostID   string `bson:"postId" json:"postId"`
	UserName string `bson:"userName" json:"userName"`
	PostURL  string `bson:"Posturl" json:"Posturl"` // la clave conserva su capitalización histórica
}

// BlockedUser is a block entry for a user handle
type BlockedUser struct {
	UserName string `bson:"userName" json:"userName"`
}

// LogEntry is one append-only action record on an identity
type LogEntry struct {
	Action    string    `bson:"action" json:"action"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Identity represents one browser install. The uuid is a pseudo-anonymous
// key, not an authenticated account; userAgent and ip are a coarse
// fingerprint used only to find the record again on re-registration.
type Identity struct {
	UUID            string        `bson:"uuid" json:"uuid"`
	UserAgent       string        `bson:"userAgent" json:"userAgent"`
	IP              string        `bson:"ip" json:"ip"`
	SuspiciousPosts []BlockedPost `bson:"suspiciousPosts" json:"suspiciousPosts"`
	NotUsefulPosts  []BlockedPost `bson:"NotImportantPosts" json:"NotImportantPosts"`
	SuspiciousUsers []BlockedUser `bson:"suspiciousUsers" json:"suspiciousUsers"`
	SpamUsers       []BlockedUser `bson:"spamUsers" json:"spamUsers"`
	Logs            []LogEntry    `bson:"logs" json:"logs"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
}

// NewIdentity creates a fresh identity with the registration log entry
func NewIdentity(uuid, userAgent, ip string) *Identity {
	return &Identity{
		UUID:      uuid,
		UserAgent: userAgent,
		IP:        ip,
		Logs:      []LogEntry{{Action: "User Registered", Timestamp: time.Now()}},
		CreatedAt: time.Now(),
	}
}

// AppendLog records an action on the identity's append-only log
func (i *Identity) AppendLog(action string) {
	i.Logs = append(i.Logs, LogEntry{Action: action, Timestamp: time.Now()})
}

// userList returns the list that corresponds to a block type
func (i *Identity) userList(blockType BlockType) *[]BlockedUser {
	if blockType == BlockTypeSuspicious {
		return &i.SuspiciousUsers
	}
	return &i.SpamUsers
}

// postList returns the list that corresponds to a report type
func (i *Identity) postList(reportType ReportType) *[]BlockedPost {
	if reportType == ReportTypeSpam {
		return &i.SuspiciousPosts
	}
	return &i.NotUsefulPosts
}

// AddBlockedUser adds a handle to the suspicious or spam user list.
// Duplicates inside one list are rejected, never merged.
func (i *Identity) AddBlockedUser(userName string, blockType BlockType) error {
	list := i.userList(blockType)
	for _, u := range *list {
		if u.UserName == userName {
			return ErrAlreadyBlocked
		}
	}
	*list = append(*list, BlockedUser{UserName: userName})
	return nil
}

// RemoveBlockedUser removes a handle from the given list
func (i *Identity) RemoveBlockedUser(userName string, blockType BlockType) error {
	list := i.userList(blockType)
	for idx, u := range *list {
		if u.UserName == userName {
			*list = append((*list)[:idx], (*list)[idx+1:]...)
			return nil
		}
	}
	return ErrNotBlocked
}

// AddBlockedPost adds a post entry to the list for the given report type.
// A postId already present in that list is left untouched.
func (i *Identity) AddBlockedPost(post BlockedPost, reportType ReportType) bool {
	list := i.postList(reportType)
	for _, p := range *list {
		if p.PostID == post.PostID {
			return false
		}
	}
	*list = append(*list, post)
	return true
}

// RemoveBlockedPost removes a post entry from the list for the given type
func (i *Identity) RemoveBlockedPost(postID string, reportType ReportType) error {
	list := i.postList(reportType)
	for idx, p := range *list {
		if p.PostID == postID {
			*list = append((*list)[:idx], (*list)[idx+1:]...)
			return nil
		}
	}
	return ErrNotBlocked
}

// BlockedPosts returns the post entries visible under a read query
func (i *Identity) BlockedPosts(reportType ReportType) []BlockedPost {
	switch reportType {
	case ReportTypeSpam:
		return i.SuspiciousPosts
	case ReportTypeNotUseful:
		return i.NotUsefulPosts
	default:
		out := make([]BlockedPost, 0, len(i.SuspiciousPosts)+len(i.NotUsefulPosts))
		out = append(out, i.SuspiciousPosts...)
		out = append(out, i.NotUsefulPosts...)
		return out
	}
}

// BlockedUsers returns the user entries visible under a read query
func (i *Identity) BlockedUsers(blockType BlockType) []BlockedUser {
	switch blockType {
	case BlockTypeSuspicious:
		return i.SuspiciousUsers
	case BlockTypeSpam:
		return i.SpamUsers
	default:
		out := make([]BlockedUser, 0, len(i.SuspiciousUsers)+len(i.SpamUsers))
		out = append(out, i.SuspiciousUsers...)
		out = append(out, i.SpamUsers...)
		return out
	}
}
