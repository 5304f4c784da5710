package web

import "github.com/VigiaStudios/VigiaGuardGo/pkg/models"

// Store is the block-list persistence surface the handlers depend on.
// pkg/database provides the MongoDB implementation; tests use an
// in-memory one.
type Store interface {
	Register(userAgent, ip string) (string, error)
	BlockedPosts(uuid string, reportType models.ReportType) ([]models.BlockedPost, error)
	BlockedUsers(uuid string, blockType models.BlockType) ([]models.BlockedUser, error)
	BlockUser(uuid, targetUserName string, blockType models.BlockType) error
	UnblockUser(uuid, targetUserName string, blockType models.BlockType) error
	BlockPost(uuid string, post models.BlockedPost, reportType models.ReportType) (string, error)
	UnblockPost(uuid, postID string, reportType models.ReportType) error
	IsPostBlocked(uuid, postID string) (bool, error)
	ActivityLogs(uuid string) ([]models.LogEntry, error)
}

// Notifier pushes block-list change events to connected clients.
// Both the websocket hub and the MQTT bus implement it.
type Notifier interface {
	BlockListChanged(uuid, action string)
}
