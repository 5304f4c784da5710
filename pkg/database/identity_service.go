package database

import (
	"errors"
	"fmt"

	"github.com/VigiaStudios/VigiaGuardGo/pkg/logger"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrIdentityManagerNotInitialized = errors.New("identity data manager not initialized")
	ErrIdentityNotFound              = errors.New("identidad no encontrada")
)

func getIdentityManager() (*DataManager[models.Identity], error) {
	if GlobalIdentityDM == nil {
		return nil, ErrIdentityManagerNotInitialized
	}
	return GlobalIdentityDM, nil
}

// FindIdentity looks up an identity by uuid
func FindIdentity(id string) (*models.Identity, error) {
	dm, err := getIdentityManager()
	if err != nil {
		return nil, err
	}

	identity, err := dm.Get(bson.M{"uuid": id})
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrIdentityNotFound
	}
	return identity, nil
}

// saveIdentity writes the whole identity document back (last-writer-wins)
func saveIdentity(identity *models.Identity) error {
	dm, err := getIdentityManager()
	if err != nil {
		return err
	}
	_, err = dm.Set(bson.M{"uuid": identity.UUID}, identity)
	return err
}

// RegisterIdentity finds an identity by its coarse (userAgent, ip)
// fingerprint or creates a fresh one with a new uuid. Re-registration of a
// known install appends a login entry instead of minting a new identity.
func RegisterIdentity(userAgent, ip string) (string, error) {
	dm, err := getIdentityManager()
	if err != nil {
		return "", err
	}

	existing, err := dm.Get(bson.M{"userAgent": userAgent, "ip": ip})
	if err != nil {
		return "", err
	}

	if existing != nil {
		existing.AppendLog("User Login")
		if err := saveIdentity(existing); err != nil {
			return "", err
		}
		return existing.UUID, nil
	}

	identity := models.NewIdentity(uuid.New().String(), userAgent, ip)
	if err := saveIdentity(identity); err != nil {
		return "", err
	}

	logger.Info(fmt.Sprintf("Nueva identidad registrada: %s", identity.UUID), "IdentityService")
	return identity.UUID, nil
}

// BlockUser adds a handle to one of the identity's user block lists
func BlockUser(id, targetUserName string, blockType models.BlockType) error {
	identity, err := FindIdentity(id)
	if err != nil {
		return err
	}

	if err := identity.AddBlockedUser(targetUserName, blockType); err != nil {
		return err
	}

	identity.AppendLog(fmt.Sprintf("Added %s to %sUsers", targetUserName, blockType))
	return saveIdentity(identity)
}

// UnblockUser removes a handle from one of the identity's user block lists
func UnblockUser(id, targetUserName string, blockType models.BlockType) error {
	identity, err := FindIdentity(id)
	if err != nil {
		return err
	}

	if err := identity.RemoveBlockedUser(targetUserName, blockType); err != nil {
		return err
	}

	identity.AppendLog(fmt.Sprintf("Removed %s from %sUsers", targetUserName, blockType))
	return saveIdentity(identity)
}

// BlockPost records a post report on the identity's block list and on the
// shared report tally. The tally rejects a duplicate (uuid, reason) pair;
// the identity list silently keeps its existing entry.
func BlockPost(id string, post models.BlockedPost, reportType models.ReportType) (string, error) {
	identity, err := FindIdentity(id)
	if err != nil {
		return "", err
	}

	reportID, err := AddReportTally(id, post.PostID, post.PostURL, reportType)
	if err != nil {
		return "", err
	}

	identity.AddBlockedPost(post, reportType)
	identity.AppendLog(fmt.Sprintf("Reported Post: %s as %s", post.PostID, reportType))

	if err := saveIdentity(identity); err != nil {
		return "", err
	}
	return reportID, nil
}

// UnblockPost removes a post entry from the identity's list for a report type
func UnblockPost(id, postID string, reportType models.ReportType) error {
	identity, err := FindIdentity(id)
	if err != nil {
		return err
	}

	if err := identity.RemoveBlockedPost(postID, reportType); err != nil {
		return err
	}

	identity.AppendLog(fmt.Sprintf("Removed reported post: %s from %s", postID, reportType))
	return saveIdentity(identity)
}

// IsPostBlocked reports whether a post is in any of the identity's lists
func IsPostBlocked(id, postID string) (bool, error) {
	identity, err := FindIdentity(id)
	if err != nil {
		return false, err
	}

	for _, p := range identity.BlockedPosts(models.ReportTypeAll) {
		if p.PostID == postID {
			return true, nil
		}
	}
	return false, nil
}

// Store adapts the identity/report services to the web handler interface
type Store struct{}

// NewStore returns a Store over the global data managers
func NewStore() *Store {
	return &Store{}
}

func (s *Store) Register(userAgent, ip string) (string, error) {
	return RegisterIdentity(userAgent, ip)
}

func (s *Store) BlockedPosts(id string, reportType models.ReportType) ([]models.BlockedPost, error) {
	identity, err := FindIdentity(id)
	if err != nil {
		return nil, err
	}
	return identity.BlockedPosts(reportType), nil
}

func (s *Store) BlockedUsers(id string, blockType models.BlockType) ([]models.BlockedUser, error) {
	identity, err := FindIdentity(id)
	if err != nil {
		return nil, err
	}
	return identity.BlockedUsers(blockType), nil
}

func (s *Store) BlockUser(id, targetUserName string, blockType models.BlockType) error {
	return BlockUser(id, targetUserName, blockType)
}

func (s *Store) UnblockUser(id, targetUserName string, blockType models.BlockType) error {
	return UnblockUser(id, targetUserName, blockType)
}

func (s *Store) BlockPost(id string, post models.BlockedPost, reportType models.ReportType) (string, error) {
	return BlockPost(id, post, reportType)
}

func (s *Store) UnblockPost(id, postID string, reportType models.ReportType) error {
	return UnblockPost(id, postID, reportType)
}

func (s *Store) IsPostBlocked(id, postID string) (bool, error) {
	return IsPostBlocked(id, postID)
}

func (s *Store) ActivityLogs(id string) ([]models.LogEntry, error) {
	identity, err := FindIdentity(id)
	if err != nil {
		return nil, err
	}
	return identity.Logs, nil
}
