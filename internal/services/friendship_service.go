package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urbano-social/backend/internal/apperrors"
	"github.com/urbano-social/backend/internal/models"
	"github.com/urbano-social/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier is the subset of NotificationService the friendship flow needs.
type Notifier interface {
	Notify(ctx context.Context, notification *models.Notification) error
}

// FriendshipService applies the friend-request lifecycle over the per-user
// relationship maps. The two halves of a pair live on independently-updated
// user documents: both writes go through the transaction runner, which falls
// back to sequential writes when the store cannot do multi-document
// transactions.
type FriendshipService struct {
	users    repositories.UserRepository
	tx       repositories.TransactionRunner
	notifier Notifier
	logger   *slog.Logger
}

// NewFriendshipService creates a FriendshipService.
func NewFriendshipService(users repositories.UserRepository, tx repositories.TransactionRunner, notifier Notifier, logger *slog.Logger) *FriendshipService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FriendshipService{users: users, tx: tx, notifier: notifier, logger: logger}
}

func validateUserID(id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return apperrors.Wrap(apperrors.InvalidInput, "invalid user id", err)
	}
	return nil
}

// SendRequest creates a pending friend request from one user to another:
// request_sent on the sender's side, request_received on the receiver's.
// It returns the sender's updated relationship map.
func (s *FriendshipService) SendRequest(ctx context.Context, fromID, toID string) (map[string]models.RelationshipState, error) {
	if err := validateUserID(fromID); err != nil {
		return nil, err
	}
	if err := validateUserID(toID); err != nil {
		return nil, err
	}
	if fromID == toID {
		return nil, apperrors.New(apperrors.InvalidInput, "cannot send a friend request to yourself")
	}

	sender, err := s.users.GetUserByID(ctx, fromID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetUserByID(ctx, toID); err != nil {
		return nil, err
	}

	switch sender.Relationships[toID] {
	case models.RelationFriend:
		return nil, apperrors.New(apperrors.Conflict, "users are already friends")
	case models.RelationRequestSent:
		return nil, apperrors.New(apperrors.Conflict, "friend request already pending")
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.SetRelationship(ctx, fromID, toID, models.RelationRequestSent); err != nil {
			return err
		}
		return s.users.SetRelationship(ctx, toID, fromID, models.RelationRequestReceived)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, &models.Notification{
		UserID:          toID,
		EmitterID:       fromID,
		EmitterUsername: sender.Username,
		Type:            models.NotificationFriendRequest,
		Message:         fmt.Sprintf("%s sent you a friend request", sender.Username),
	})

	updated := cloneRelationships(sender.Relationships)
	updated[toID] = models.RelationRequestSent
	return updated, nil
}

// AcceptRequest settles a pending request into a symmetric friendship. Both
// sides end up as friend, or neither does when the store supports transactions.
func (s *FriendshipService) AcceptRequest(ctx context.Context, acceptorID, requesterID string) (map[string]models.RelationshipState, error) {
	if err := validateUserID(acceptorID); err != nil {
		return nil, err
	}
	if err := validateUserID(requesterID); err != nil {
		return nil, err
	}

	acceptor, err := s.users.GetUserByID(ctx, acceptorID)
	if err != nil {
		return nil, err
	}
	if acceptor.Relationships[requesterID] != models.RelationRequestReceived {
		return nil, apperrors.New(apperrors.Conflict, "no pending friend request from this user")
	}
	if _, err := s.users.GetUserByID(ctx, requesterID); err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.SetRelationship(ctx, acceptorID, requesterID, models.RelationFriend); err != nil {
			return err
		}
		return s.users.SetRelationship(ctx, requesterID, acceptorID, models.RelationFriend)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, &models.Notification{
		UserID:          requesterID,
		EmitterID:       acceptorID,
		EmitterUsername: acceptor.Username,
		Type:            models.NotificationFriendAccepted,
		Message:         fmt.Sprintf("%s accepted your friend request", acceptor.Username),
	})

	updated := cloneRelationships(acceptor.Relationships)
	updated[requesterID] = models.RelationFriend
	return updated, nil
}

// RejectRequest removes a pending request from both sides, returning the pair
// to strangers. No notification is sent.
func (s *FriendshipService) RejectRequest(ctx context.Context, rejecterID, requesterID string) (map[string]models.RelationshipState, error) {
	if err := validateUserID(rejecterID); err != nil {
		return nil, err
	}
	if err := validateUserID(requesterID); err != nil {
		return nil, err
	}

	rejecter, err := s.users.GetUserByID(ctx, rejecterID)
	if err != nil {
		return nil, err
	}
	if rejecter.Relationships[requesterID] != models.RelationRequestReceived {
		return nil, apperrors.New(apperrors.Conflict, "no pending friend request from this user")
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.UnsetRelationship(ctx, rejecterID, requesterID); err != nil {
			return err
		}
		return s.users.UnsetRelationship(ctx, requesterID, rejecterID)
	})
	if err != nil {
		return nil, err
	}

	updated := cloneRelationships(rejecter.Relationships)
	delete(updated, requesterID)
	return updated, nil
}

// ListFriends returns compact profiles for every settled friendship of the user.
func (s *FriendshipService) ListFriends(ctx context.Context, userID string) ([]models.UserCompact, error) {
	return s.listByState(ctx, userID, models.RelationFriend)
}

// ListPendingRequests returns compact profiles for every user with an
// unanswered request towards this user.
func (s *FriendshipService) ListPendingRequests(ctx context.Context, userID string) ([]models.UserCompact, error) {
	return s.listByState(ctx, userID, models.RelationRequestReceived)
}

func (s *FriendshipService) listByState(ctx context.Context, userID string, state models.RelationshipState) ([]models.UserCompact, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ids []string
	for otherID, rel := range user.Relationships {
		if rel == state {
			ids = append(ids, otherID)
		}
	}
	if len(ids) == 0 {
		return []models.UserCompact{}, nil
	}

	others, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	compact := make([]models.UserCompact, 0, len(others))
	for i := range others {
		compact = append(compact, others[i].ToCompact())
	}
	return compact, nil
}

// notify is best-effort: a failed notification write never rolls back a
// completed relationship transition.
func (s *FriendshipService) notify(ctx context.Context, notification *models.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, notification); err != nil {
		s.logger.Warn("failed to create friendship notification",
			"type", notification.Type,
			"recipient", notification.UserID,
			"error", err)
	}
}

func cloneRelationships(relationships map[string]models.RelationshipState) map[string]models.RelationshipState {
	out := make(map[string]models.RelationshipState, len(relationships)+1)
	for id, state := range relationships {
		out[id] = state
	}
	return out
}
