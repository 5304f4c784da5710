package engine

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/singleflight"

	"github.com/VigiaStudios/VigiaGuardGo/internal/extract"
	"github.com/VigiaStudios/VigiaGuardGo/internal/storage"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/logger"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/models"
)

// BlockSnapshot is the merged block-list view the matcher scans against.
// Usernames are stored normalized.
type BlockSnapshot struct {
	ReportedPosts     map[string]struct{}
	SpamPosts         map[string]struct{}
	ReportedUsernames map[string]struct{}
	SpamUsernames     map[string]struct{}
}

func newBlockSnapshot() *BlockSnapshot {
	return &BlockSnapshot{
		ReportedPosts:     make(map[string]struct{}),
		SpamPosts:         make(map[string]struct{}),
		ReportedUsernames: make(map[string]struct{}),
		SpamUsernames:     make(map[string]struct{}),
	}
}

// HasReportedPost reports whether the post was reported as not useful.
func (s *BlockSnapshot) HasReportedPost(postID string) bool {
	_, ok := s.ReportedPosts[postID]
	return ok
}

// HasSpamPost reports whether the post was reported as spam.
func (s *BlockSnapshot) HasSpamPost(postID string) bool {
	_, ok := s.SpamPosts[postID]
	return ok
}

// HasReportedUser reports whether the handle is on the suspicious list.
func (s *BlockSnapshot) HasReportedUser(handle string) bool {
	_, ok := s.ReportedUsernames[extract.NormalizeHandle(handle)]
	return ok
}

// HasSpamUser reports whether the handle is on the spam list.
func (s *BlockSnapshot) HasSpamUser(handle string) bool {
	_, ok := s.SpamUsernames[extract.NormalizeHandle(handle)]
	return ok
}

func setToList(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Fetcher is the remote side the reconciler pulls from. *Client
// implements it; tests substitute fakes.
type Fetcher interface {
	BlockedPosts(ctx context.Context, uuid string, reportType models.ReportType) ([]models.BlockedPost, error)
	BlockedUsers(ctx context.Context, uuid string, blockType models.BlockType) ([]models.BlockedUser, error)
}

// Reconciler keeps the local cache and the remote block lists in sync.
// Concurrent refreshes collapse into a single remote round; when the
// service is unreachable the cached lists are served as-is.
type Reconciler struct {
	gateway storage.Gateway
	fetcher Fetcher
	uuid    string
	group   singleflight.Group
}

// NewReconciler builds a reconciler for the identified agent.
func NewReconciler(gateway storage.Gateway, fetcher Fetcher, uuid string) *Reconciler {
	return &Reconciler{gateway: gateway, fetcher: fetcher, uuid: uuid}
}

// Refresh returns the merged snapshot: the cached lists plus whatever
// the service reports right now. The merged result is persisted back to
// the cache so offline sessions keep hiding what was hidden before.
func (r *Reconciler) Refresh(ctx context.Context) (*BlockSnapshot, error) {
	v, err, _ := r.group.Do("refresh", func() (interface{}, error) {
		return r.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*BlockSnapshot), nil
}

// Cached returns the snapshot from local storage without touching the
// network.
func (r *Reconciler) Cached() (*BlockSnapshot, error) {
	snap := newBlockSnapshot()
	for key, set := range map[string]map[string]struct{}{
		storage.KeyReportedPosts:     snap.ReportedPosts,
		storage.KeySpamPosts:         snap.SpamPosts,
		storage.KeyReportedUsernames: snap.ReportedUsernames,
		storage.KeySpamUsernames:     snap.SpamUsernames,
	} {
		list, err := r.gateway.GetList(key)
		if err != nil {
			return nil, fmt.Errorf("error leyendo la lista %s: %w", key, err)
		}
		for _, v := range list {
			if key == storage.KeyReportedUsernames || key == storage.KeySpamUsernames {
				v = extract.NormalizeHandle(v)
			}
			set[v] = struct{}{}
		}
	}
	return snap, nil
}

func (r *Reconciler) refresh(ctx context.Context) (*BlockSnapshot, error) {
	snap, err := r.Cached()
	if err != nil {
		return nil, err
	}

	notUseful, err := r.fetcher.BlockedPosts(ctx, r.uuid, models.ReportTypeNotUseful)
	if err != nil {
		// Sin red se sirve la caché tal cual.
		logger.Debug(fmt.Sprintf("Servicio no disponible, usando caché local: %v", err), "SYNC")
		return snap, nil
	}
	spamPosts, err := r.fetcher.BlockedPosts(ctx, r.uuid, models.ReportTypeSpam)
	if err != nil {
		logger.Debug(fmt.Sprintf("Servicio no disponible, usando caché local: %v", err), "SYNC")
		return snap, nil
	}
	suspiciousUsers, err := r.fetcher.BlockedUsers(ctx, r.uuid, models.BlockTypeSuspicious)
	if err != nil {
		logger.Debug(fmt.Sprintf("Servicio no disponible, usando caché local: %v", err), "SYNC")
		return snap, nil
	}
	spamUsers, err := r.fetcher.BlockedUsers(ctx, r.uuid, models.BlockTypeSpam)
	if err != nil {
		logger.Debug(fmt.Sprintf("Servicio no disponible, usando caché local: %v", err), "SYNC")
		return snap, nil
	}

	for _, p := range notUseful {
		snap.ReportedPosts[p.PostID] = struct{}{}
	}
	for _, p := range spamPosts {
		snap.SpamPosts[p.PostID] = struct{}{}
	}
	for _, u := range suspiciousUsers {
		snap.ReportedUsernames[extract.NormalizeHandle(u.UserName)] = struct{}{}
	}
	for _, u := range spamUsers {
		snap.SpamUsernames[extract.NormalizeHandle(u.UserName)] = struct{}{}
	}

	if err := r.persist(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// AddReportedPost appends a post to the cached reported list so the
// next scans hide it even before the service confirms the report.
func (r *Reconciler) AddReportedPost(postID string) error {
	return r.gateway.AppendList(storage.KeyReportedPosts, postID)
}

func (r *Reconciler) persist(snap *BlockSnapshot) error {
	for key, set := range map[string]map[string]struct{}{
		storage.KeyReportedPosts:     snap.ReportedPosts,
		storage.KeySpamPosts:         snap.SpamPosts,
		storage.KeyReportedUsernames: snap.ReportedUsernames,
		storage.KeySpamUsernames:     snap.SpamUsernames,
	} {
		if err := r.gateway.SetList(key, setToList(set)); err != nil {
			return fmt.Errorf("error persistiendo la lista %s: %w", key, err)
		}
	}
	return nil
}
