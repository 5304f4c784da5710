// Package web provides API routes for the block-list service.
package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/VigiaStudios/VigiaGuardGo/pkg/database"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/logger"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/models"
	"github.com/gin-gonic/gin"
)

// api holds the dependencies shared by the user route handlers
type api struct {
	store    Store
	notifier Notifier
}

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, store Store, notifier Notifier) {
	a := &api{store: store, notifier: notifier}

	users := s.Group("/api/users")
	{
		users.POST("/register", a.registerHandler)
		users.GET("/blocked-posts/:uuid", a.blockedPostsHandler)
		users.GET("/blocked-users/:uuid", a.blockedUsersHandler)
		users.POST("/block-user", a.blockUserHandler)
		users.DELETE("/block-user/:uuid/:targetUserName", a.unblockUserHandler)
		users.POST("/block-post", a.blockPostHandler)
		users.DELETE("/block-post/:uuid/:postId", a.unblockPostHandler)
		users.POST("/is-post-blocked", a.isPostBlockedHandler)
		users.GET("/activity/:uuid", a.activityHandler)
	}

	api := s.Group("/api")
	{
		api.GET("/status", statusHandler)
		api.GET("/health", healthHandler)
	}
}

// notify publishes a block-list change so open pages re-evaluate
func (a *api) notify(uuid, action string) {
	if a.notifier != nil {
		a.notifier.BlockListChanged(uuid, action)
	}
}

// registerHandler issues or retrieves the identity for a browser install
func (a *api) registerHandler(c *gin.Context) {
	var req struct {
		UserAgent string `json:"userAgent"`
		IP        string `json:"ip"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	uuid, err := a.store.Register(req.UserAgent, req.IP)
	if err != nil {
		logger.Error(fmt.Sprintf("Error registrando identidad: %v", err), "API")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"uuid": uuid})
}

// blockedPostsHandler returns the post block entries for an identity
func (a *api) blockedPostsHandler(c *gin.Context) {
	uuid := c.Param("uuid")
	reportType := models.ReportType(c.Query("reportType"))

	if !reportType.ValidQuery() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing reportType"})
		return
	}

	posts, err := a.store.BlockedPosts(uuid, reportType)
	if err != nil {
		a.writeStoreError(c, err)
		return
	}

	if posts == nil {
		posts = []models.BlockedPost{}
	}
	c.JSON(http.StatusOK, gin.H{"blockedUsers": posts})
}

// blockedUsersHandler returns the user block entries for an identity
func (a *api) blockedUsersHandler(c *gin.Context) {
	uuid := c.Param("uuid")
	blockType := models.BlockType(c.Query("blockType"))

	if !blockType.ValidQuery() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing blockType"})
		return
	}

	users, err := a.store.BlockedUsers(uuid, blockType)
	if err != nil {
		a.writeStoreError(c, err)
		return
	}

	if users == nil {
		users = []models.BlockedUser{}
	}
	c.JSON(http.StatusOK, gin.H{"blockedUsers": users})
}

// blockUserHandler adds a handle to a user block list
func (a *api) blockUserHandler(c *gin.Context) {
	var req struct {
		UUID           string `json:"uuid"`
		TargetUserName string `json:"targetUserName"`
		BlockType      string `json:"blockType"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || req.UUID == "" || req.TargetUserName == "" || req.BlockType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing uuid, targetUserName, or blockType"})
		return
	}

	blockType := models.BlockType(req.BlockType)
	if !blockType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid block type"})
		return
	}

	if err := a.store.BlockUser(req.UUID, req.TargetUserName, blockType); err != nil {
		if errors.Is(err, models.ErrAlreadyBlocked) {
			c.JSON(http.StatusConflict, gin.H{"error": "User already added"})
			return
		}
		a.writeStoreError(c, err)
		return
	}

	a.notify(req.UUID, "BLOCK_USER")
	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("User added to %sUsers successfully", blockType),
	})
}

// unblockUserHandler removes a handle from a user block list
func (a *api) unblockUserHandler(c *gin.Context) {
	uuid := c.Param("uuid")
	targetUserName := c.Param("targetUserName")
	blockType := models.BlockType(c.Query("blockType"))

	if !blockType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing block type"})
		return
	}

	if err := a.store.UnblockUser(uuid, targetUserName, blockType); err != nil {
		if errors.Is(err, models.ErrNotBlocked) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found in the block list"})
			return
		}
		a.writeStoreError(c, err)
		return
	}

	a.notify(uuid, "UNBLOCK_USER")
	c.JSON(http.StatusOK, gin.H{
		"message":        fmt.Sprintf("User removed from %sUsers", blockType),
		"targetUserName": targetUserName,
	})
}

// blockPostHandler reports a post and adds it to the identity's block list
func (a *api) blockPostHandler(c *gin.Context) {
	var req struct {
		UUID       string `json:"uuid"`
		PostID     string `json:"postId"`
		ReportType string `json:"reportType"`
		UserName   string `json:"userName"`
		PostURL    string `json:"postUrl"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || req.PostID == "" || req.UserName == "" || req.PostURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing postId, userName, or postUrl"})
		return
	}

	reportType := models.ReportType(req.ReportType)
	if !reportType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report type"})
		return
	}

	post := models.BlockedPost{PostID: req.PostID, UserName: req.UserName, PostURL: req.PostURL}
	reportID, err := a.store.BlockPost(req.UUID, post, reportType)
	if err != nil {
		if errors.Is(err, models.ErrAlreadyReported) {
			c.JSON(http.StatusConflict, gin.H{"error": "Post already reported by you"})
			return
		}
		a.writeStoreError(c, err)
		return
	}

	a.notify(req.UUID, "BLOCK_POST")
	c.JSON(http.StatusCreated, gin.H{
		"message":  fmt.Sprintf("Post reported as %s successfully", reportType),
		"reportId": reportID,
	})
}

// unblockPostHandler removes a post entry from the identity's block list
func (a *api) unblockPostHandler(c *gin.Context) {
	uuid := c.Param("uuid")
	postID := c.Param("postId")
	reportType := models.ReportType(c.Query("reportType"))

	if !reportType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing report type"})
		return
	}

	if err := a.store.UnblockPost(uuid, postID, reportType); err != nil {
		if errors.Is(err, models.ErrNotBlocked) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reported post not found for this reportType"})
			return
		}
		a.writeStoreError(c, err)
		return
	}

	a.notify(uuid, "UNBLOCK_POST")
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Post removed from %s reports", reportType),
		"postId":  postID,
	})
}

// isPostBlockedHandler answers the membership check the popup issues
func (a *api) isPostBlockedHandler(c *gin.Context) {
	var req struct {
		UUID   string `json:"uuid"`
		PostID string `json:"postId"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || req.UUID == "" || req.PostID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing uuid or postId"})
		return
	}

	blocked, err := a.store.IsPostBlocked(req.UUID, req.PostID)
	if err != nil {
		a.writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"isBlocked": blocked})
}

// activityHandler returns the identity's append-only action log
func (a *api) activityHandler(c *gin.Context) {
	logs, err := a.store.ActivityLogs(c.Param("uuid"))
	if err != nil {
		a.writeStoreError(c, err)
		return
	}

	if logs == nil {
		logs = []models.LogEntry{}
	}
	c.JSON(http.StatusOK, logs)
}

// writeStoreError maps store failures to the API error contract
func (a *api) writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrIdentityNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	logger.Error(fmt.Sprintf("Error de almacenamiento: %v", err), "API")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
}

// statusHandler returns the service and database status
func statusHandler(c *gin.Context) {
	db := database.Get()

	dbStatus := "🔴 | Desconectado"
	dbOnline := false
	if db != nil {
		dbStatus, dbOnline = db.GetStatus()
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"database": gin.H{
			"status":   dbStatus,
			"isOnline": dbOnline,
		},
	})
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "VigiaGuard Go is running",
	})
}
