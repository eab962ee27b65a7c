// Package comments manages threaded comments on catches: creation behind
// the rate limiter and moderation gate, soft delete with restore, and the
// two-tier thread projection clients render.
package comments

import (
	"log"
	"strings"
	"time"

	"anglerlog/backend/internal/config"
	"anglerlog/backend/internal/models"
	"anglerlog/backend/internal/moderation"
	"anglerlog/backend/internal/modlog"
	"anglerlog/backend/internal/notify"
	"anglerlog/backend/internal/ratelimit"
	"anglerlog/backend/internal/storage"
)

const snippetLen = 80

// Service handles the comment workflow.
type Service struct {
	Storage    storage.Storage
	Limiter    *ratelimit.Service
	Moderation *moderation.Service
	Notifier   *notify.Notifier
}

// NewService creates a new comment service.
func NewService(s storage.Storage, limiter *ratelimit.Service, mod *moderation.Service, n *notify.Notifier) *Service {
	return &Service{Storage: s, Limiter: limiter, Moderation: mod, Notifier: n}
}

// Create posts a comment (or reply) on a catch and returns its id. All
// preconditions are checked before anything is written; each failure maps
// to a distinct error.
func (s *Service) Create(catchID, userID, body string, parentCommentID *string) (string, error) {
	if err := s.Moderation.AssertAllowed(userID); err != nil {
		return "", err
	}

	author, err := s.Storage.GetProfileByID(userID)
	if err != nil {
		return "", err
	}
	if author == nil {
		return "", moderation.ErrProfileNotFound
	}

	if strings.TrimSpace(body) == "" {
		return "", ErrEmptyBody
	}

	// Admins bypass the comment rate limit.
	if !author.IsAdmin() {
		allowed, err := s.Limiter.CheckAndRecord(userID, config.RateActionComment)
		if err != nil {
			return "", err
		}
		if !allowed {
			return "", s.rateLimitedError(userID)
		}
	}

	catch, err := s.accessibleCatch(catchID, author)
	if err != nil {
		return "", err
	}

	var parent *models.Comment
	if parentCommentID != nil {
		// A soft-deleted parent is still a valid reply target; deleting
		// an ancestor must never break the thread.
		parent, err = s.Storage.GetCommentByID(*parentCommentID)
		if err != nil {
			return "", err
		}
		if parent == nil || parent.CatchID != catchID {
			return "", ErrInvalidParent
		}
	}

	comment := &models.Comment{
		CatchID:         catchID,
		UserID:          userID,
		Body:            body,
		ParentCommentID: parentCommentID,
	}
	if err := s.Storage.SaveComment(comment); err != nil {
		return "", err
	}

	s.notifyOnComment(comment, catch, parent)
	return comment.ID, nil
}

// SoftDelete hides a comment. Allowed for the comment's author and for
// admins; idempotent; children stay attached and visible.
func (s *Service) SoftDelete(commentID, actorID string) error {
	comment, err := s.Storage.GetCommentByID(commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}

	if comment.UserID != actorID {
		isAdmin, err := s.Moderation.IsAdmin(actorID)
		if err != nil {
			return err
		}
		if !isAdmin {
			return moderation.ErrNotAuthorized
		}
	}

	if comment.IsDeleted() {
		return nil
	}
	now := time.Now()
	return s.Storage.SetCommentDeleted(commentID, &now)
}

// AdminDelete soft-deletes a comment as a moderation action and records it
// in the moderation log.
func (s *Service) AdminDelete(commentID, adminID, reason string) error {
	isAdmin, err := s.Moderation.IsAdmin(adminID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return moderation.ErrNotAuthorized
	}

	comment, err := s.Storage.GetCommentByID(commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}

	if !comment.IsDeleted() {
		now := time.Now()
		if err := s.Storage.SetCommentDeleted(commentID, &now); err != nil {
			return err
		}
	}

	entry := &models.ModerationLogEntry{
		Action:     config.ActionDeleteComment,
		AdminID:    adminID,
		TargetType: config.TargetComment,
		TargetID:   commentID,
		UserID:     &comment.UserID,
		Metadata:   modlog.EncodeMetadata(map[string]interface{}{"reason": reason}),
	}
	if err := s.Storage.AppendModerationLog(entry); err != nil {
		return err
	}

	s.Notifier.Notify(comment.UserID, models.NotificationModeration, adminID,
		config.TargetComment, commentID, "Your comment was removed by a moderator: "+reason)
	return nil
}

// AdminRestore clears a comment's soft delete. Idempotent; restoring an
// already visible comment is a no-op.
func (s *Service) AdminRestore(commentID, adminID, reason string) error {
	isAdmin, err := s.Moderation.IsAdmin(adminID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return moderation.ErrNotAuthorized
	}

	comment, err := s.Storage.GetCommentByID(commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	if !comment.IsDeleted() {
		return nil
	}

	if err := s.Storage.SetCommentDeleted(commentID, nil); err != nil {
		return err
	}

	entry := &models.ModerationLogEntry{
		Action:     config.ActionRestoreComment,
		AdminID:    adminID,
		TargetType: config.TargetComment,
		TargetID:   commentID,
		UserID:     &comment.UserID,
		Metadata:   modlog.EncodeMetadata(map[string]interface{}{"reason": reason}),
	}
	return s.Storage.AppendModerationLog(entry)
}

// ThreadComment is a root comment with its flattened replies.
type ThreadComment struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Username  string        `json:"username"`
	Body      string        `json:"body"`
	Deleted   bool          `json:"deleted"`
	CreatedAt time.Time     `json:"created_at"`
	Replies   []ThreadReply `json:"replies"`
}

// ThreadReply is one reply under a root. However deep the real chain goes,
// replies render in this single tier; ParentAuthor and ParentSnippet keep
// the "replying to" context from the true parent.
type ThreadReply struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Username        string    `json:"username"`
	Body            string    `json:"body"`
	Deleted         bool      `json:"deleted"`
	ParentCommentID string    `json:"parent_comment_id"`
	ParentAuthor    string    `json:"parent_author"`
	ParentSnippet   string    `json:"parent_snippet"`
	CreatedAt       time.Time `json:"created_at"`
}

// Thread returns the catch's comments flattened to two visual tiers. The
// stored forest keeps genuine parent references; only this projection
// collapses depth.
func (s *Service) Thread(catchID, viewerID string) ([]ThreadComment, error) {
	viewer, err := s.Storage.GetProfileByID(viewerID)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, moderation.ErrProfileNotFound
	}

	if _, err := s.accessibleCatch(catchID, viewer); err != nil {
		return nil, err
	}

	all, err := s.Storage.GetCommentsForCatch(catchID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Comment, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}
	usernames := s.resolveUsernames(all)

	viewerIsAdmin := viewer.IsAdmin()
	var thread []ThreadComment
	rootIndex := make(map[string]int)

	for i := range all {
		c := &all[i]
		if c.ParentCommentID == nil {
			rootIndex[c.ID] = len(thread)
			thread = append(thread, ThreadComment{
				ID:        c.ID,
				UserID:    c.UserID,
				Username:  usernames[c.UserID],
				Body:      visibleBody(c, viewerID, viewerIsAdmin),
				Deleted:   c.IsDeleted(),
				CreatedAt: c.CreatedAt,
			})
		}
	}

	for i := range all {
		c := &all[i]
		if c.ParentCommentID == nil {
			continue
		}

		parent := byID[*c.ParentCommentID]
		root := rootOf(c, byID)
		idx, ok := rootIndex[root.ID]
		if !ok {
			// Orphaned chain (root physically gone). Skip rather than crash.
			log.Printf("WARNING: Comment %s has no reachable root, skipping in thread", c.ID)
			continue
		}

		reply := ThreadReply{
			ID:              c.ID,
			UserID:          c.UserID,
			Username:        usernames[c.UserID],
			Body:            visibleBody(c, viewerID, viewerIsAdmin),
			Deleted:         c.IsDeleted(),
			ParentCommentID: *c.ParentCommentID,
			CreatedAt:       c.CreatedAt,
		}
		if parent != nil {
			reply.ParentAuthor = usernames[parent.UserID]
			reply.ParentSnippet = snippet(visibleBody(parent, viewerID, viewerIsAdmin))
		} else {
			reply.ParentAuthor = config.DeletedBodyPlaceholder
			reply.ParentSnippet = config.DeletedBodyPlaceholder
		}
		thread[idx].Replies = append(thread[idx].Replies, reply)
	}

	return thread, nil
}

// accessibleCatch applies the full visibility contract for viewer: the
// catch exists, is not soft-deleted, neither party has blocked the other,
// and the visibility level admits the viewer.
func (s *Service) accessibleCatch(catchID string, viewer *models.Profile) (*models.Catch, error) {
	catch, err := s.Storage.GetCatchByID(catchID)
	if err != nil {
		return nil, err
	}
	if catch == nil || catch.DeletedAt != nil {
		return nil, ErrNotAccessible
	}

	if catch.UserID == viewer.ID || viewer.IsAdmin() {
		return catch, nil
	}

	owner, err := s.Storage.GetProfileByID(catch.UserID)
	if err != nil {
		return nil, err
	}
	if owner == nil || owner.IsDeleted {
		return nil, ErrNotAccessible
	}
	if owner.HasBlocked(viewer.ID) || viewer.HasBlocked(owner.ID) {
		return nil, ErrNotAccessible
	}

	switch catch.Visibility {
	case models.VisibilityPublic:
		return catch, nil
	case models.VisibilityFollowers:
		following, err := s.Storage.IsFollowing(viewer.ID, owner.ID)
		if err != nil {
			return nil, err
		}
		if !following {
			return nil, ErrNotAccessible
		}
		return catch, nil
	default: // private
		return nil, ErrNotAccessible
	}
}

func (s *Service) rateLimitedError(userID string) error {
	rlErr := &RateLimitedError{}
	if status, err := s.Limiter.Status(userID, config.RateActionComment); err == nil {
		rlErr.ResetAt = status.ResetAt
	}
	return rlErr
}

func (s *Service) notifyOnComment(comment *models.Comment, catch *models.Catch, parent *models.Comment) {
	if parent != nil {
		s.Notifier.Notify(parent.UserID, models.NotificationReply, comment.UserID,
			config.TargetComment, comment.ID, "Someone replied to your comment.")
		if parent.UserID == catch.UserID {
			return // owner already notified as the parent author
		}
	}
	s.Notifier.Notify(catch.UserID, models.NotificationComment, comment.UserID,
		config.TargetCatch, catch.ID, "Someone commented on your catch.")
}

func (s *Service) resolveUsernames(all []models.Comment) map[string]string {
	usernames := make(map[string]string)
	for i := range all {
		id := all[i].UserID
		if _, ok := usernames[id]; ok {
			continue
		}
		profile, err := s.Storage.GetProfileByID(id)
		if err != nil || profile == nil {
			usernames[id] = config.DeletedBodyPlaceholder
			continue
		}
		usernames[id] = profile.Username
	}
	return usernames
}

// rootOf walks the parent chain up to the top-level ancestor.
func rootOf(c *models.Comment, byID map[string]*models.Comment) *models.Comment {
	current := c
	for current.ParentCommentID != nil {
		parent, ok := byID[*current.ParentCommentID]
		if !ok {
			return current
		}
		current = parent
	}
	return current
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLen {
		return text
	}
	return string(runes[:snippetLen]) + "…"
}

func visibleBody(c *models.Comment, viewerID string, viewerIsAdmin bool) string {
	if c.IsDeleted() && c.UserID != viewerID && !viewerIsAdmin {
		return config.DeletedBodyPlaceholder
	}
	return c.Body
}
