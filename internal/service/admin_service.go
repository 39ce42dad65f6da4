package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/pulsekit/smsdash/internal/apperrors"
	"github.com/pulsekit/smsdash/internal/model"
	"github.com/pulsekit/smsdash/internal/repository"
)

// Batch actions accepted by BatchUpdateUsers.
const (
	ActionApprove    = "approve"
	ActionReject     = "reject"
	ActionUpdateRole = "update_role"
)

type AdminService struct {
	ProfileRepo  repository.ProfileRepositoryInterface
	CampaignRepo repository.CampaignRepositoryInterface
	CustomerRepo repository.CustomerRepositoryInterface
	InviteRepo   repository.InviteRepositoryInterface
	DB           *sql.DB
	Now          func() time.Time
}

// PendingUsers lists accounts awaiting approval.
func (s *AdminService) PendingUsers(ctx context.Context) ([]model.UserProfile, error) {
	return s.ProfileRepo.ListPending(ctx)
}

// BatchUpdateUsers applies one action to a set of accounts. All
// validation, including the self-exclusion rule, happens before any
// write; the update itself is a single atomic statement.
func (s *AdminService) BatchUpdateUsers(ctx context.Context, actingAdminID string, targetUserIDs []string, action string, role string) ([]model.UserProfile, error) {
	if len(targetUserIDs) == 0 {
		return nil, apperrors.Validation("user_ids must be a non-empty list")
	}
	for _, id := range targetUserIDs {
		if id == "" {
			return nil, apperrors.Validation("user_ids must not contain empty identifiers")
		}
		if id == actingAdminID {
			return nil, apperrors.Validation("you cannot include your own account in a batch update")
		}
	}

	var changes repository.ProfileChanges
	switch action {
	case ActionApprove:
		status := model.StatusApproved
		now := s.now()
		changes.Status = &status
		changes.ApprovedAt = &now
	case ActionReject:
		status := model.StatusRejected
		changes.Status = &status
	case ActionUpdateRole:
		r := model.Role(role)
		if !model.ValidRole(r) {
			return nil, apperrors.Validation("role must be one of admin, moderator, user")
		}
		changes.Role = &r
	default:
		return nil, apperrors.Validation("invalid action: " + action)
	}

	return s.ProfileRepo.BatchUpdate(ctx, targetUserIDs, changes)
}

// RejectUser rejects a single account.
func (s *AdminService) RejectUser(ctx context.Context, actingAdminID, targetUserID string) (*model.UserProfile, error) {
	if targetUserID == "" {
		return nil, apperrors.Validation("user_id is required")
	}
	if targetUserID == actingAdminID {
		return nil, apperrors.Validation("you cannot reject your own account")
	}
	return s.ProfileRepo.UpdateStatus(ctx, targetUserID, model.StatusRejected)
}

// CreateInvite mints an invite code valid for the given duration.
func (s *AdminService) CreateInvite(ctx context.Context, actingAdminID string, validFor time.Duration) (*model.InviteCode, error) {
	if validFor <= 0 {
		validFor = 7 * 24 * time.Hour
	}
	invite := &model.InviteCode{
		Code:      uuid.NewString(),
		ExpiresAt: s.now().Add(validFor),
		CreatedBy: actingAdminID,
	}
	if err := s.InviteRepo.Create(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

// HealthSnapshot is the admin system-health view.
type HealthSnapshot struct {
	Database  string         `json:"database"`
	Users     map[string]int `json:"users"`
	Campaigns map[string]int `json:"campaigns"`
	Customers int            `json:"customers"`
	CheckedAt time.Time      `json:"checked_at"`
}

// SystemHealth pings the store and gathers entity counts.
func (s *AdminService) SystemHealth(ctx context.Context) (*HealthSnapshot, error) {
	if err := s.DB.PingContext(ctx); err != nil {
		return nil, apperrors.Upstream(err)
	}
	users, err := s.ProfileRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	campaigns, err := s.CampaignRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.CustomerRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &HealthSnapshot{
		Database:  "ok",
		Users:     users,
		Campaigns: campaigns,
		Customers: customers,
		CheckedAt: s.now(),
	}, nil
}

func (s *AdminService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
