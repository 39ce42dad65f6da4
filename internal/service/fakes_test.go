package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pulsekit/smsdash/internal/apperrors"
	"github.com/pulsekit/smsdash/internal/model"
	"github.com/pulsekit/smsdash/internal/repository"
)

// In-memory repository fakes shared by the service tests.

type memCampaignRepo struct {
	campaigns map[string]*model.Campaign
}

func newMemCampaignRepo() *memCampaignRepo {
	return &memCampaignRepo{campaigns: map[string]*model.Campaign{}}
}

func (m *memCampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	c.CreatedAt = time.Now().UTC()
	clone := *c
	m.campaigns[c.ID] = &clone
	return nil
}

func (m *memCampaignRepo) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	c, ok := m.campaigns[id]
	if !ok {
		return nil, apperrors.NotFound("campaign not found")
	}
	clone := *c
	return &clone, nil
}

func (m *memCampaignRepo) ListByOwner(_ context.Context, userID string, f repository.CampaignFilters) ([]model.Campaign, error) {
	out := []model.Campaign{}
	for _, c := range m.campaigns {
		if c.UserID != userID {
			continue
		}
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(c.Name), needle) &&
				!strings.Contains(strings.ToLower(c.MessageBody), needle) {
				continue
			}
		}
		if f.DateFrom != nil && (c.ScheduledAt == nil || c.ScheduledAt.Before(*f.DateFrom)) {
			continue
		}
		if f.DateTo != nil && (c.ScheduledAt == nil || c.ScheduledAt.After(*f.DateTo)) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.Ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Offset != nil {
		if *f.Offset >= len(out) {
			return []model.Campaign{}, nil
		}
		out = out[*f.Offset:]
	}
	if f.Limit != nil && *f.Limit < len(out) {
		out = out[:*f.Limit]
	}
	return out, nil
}

func (m *memCampaignRepo) UpdateStatus(_ context.Context, id string, status model.CampaignStatus) error {
	if c, ok := m.campaigns[id]; ok {
		c.Status = status
	}
	return nil
}

func (m *memCampaignRepo) SetTotalRecipients(_ context.Context, id string, total int) error {
	if c, ok := m.campaigns[id]; ok {
		c.TotalRecipients = total
	}
	return nil
}

func (m *memCampaignRepo) CountByStatus(_ context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, c := range m.campaigns {
		counts[string(c.Status)]++
	}
	return counts, nil
}

type memCustomerRepo struct {
	customers map[string]*model.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{customers: map[string]*model.Customer{}}
}

func (m *memCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	for _, existing := range m.customers {
		if existing.UserID == c.UserID && existing.Phone == c.Phone {
			return apperrors.Validation("a contact with this phone number already exists")
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	clone := *c
	m.customers[c.ID] = &clone
	return nil
}

func (m *memCustomerRepo) GetByID(_ context.Context, id string) (*model.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, apperrors.NotFound("customer not found")
	}
	clone := *c
	return &clone, nil
}

func (m *memCustomerRepo) ListByOwner(_ context.Context, userID string, activeOnly bool) ([]model.Customer, error) {
	out := []model.Customer{}
	for _, c := range m.customers {
		if c.UserID != userID {
			continue
		}
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCustomerRepo) Count(_ context.Context) (int, error) {
	return len(m.customers), nil
}

type memMessageRepo struct {
	messages  map[string]*model.CampaignMessage
	customers *memCustomerRepo
}

func newMemMessageRepo(customers *memCustomerRepo) *memMessageRepo {
	return &memMessageRepo{messages: map[string]*model.CampaignMessage{}, customers: customers}
}

func (m *memMessageRepo) CreateForCampaign(_ context.Context, campaignID, customerID string) (*model.CampaignMessage, error) {
	for _, msg := range m.messages {
		if msg.CampaignID == campaignID && msg.CustomerID == customerID {
			clone := *msg
			return &clone, nil
		}
	}
	now := time.Now().UTC()
	msg := &model.CampaignMessage{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		CustomerID: customerID,
		Status:     model.MessagePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.messages[msg.ID] = msg
	clone := *msg
	return &clone, nil
}

func (m *memMessageRepo) GetByID(_ context.Context, id string) (*model.CampaignMessage, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, apperrors.NotFound("message not found")
	}
	clone := *msg
	return &clone, nil
}

func (m *memMessageRepo) ListByCampaign(_ context.Context, campaignID string) ([]model.MessageWithRecipient, error) {
	out := []model.MessageWithRecipient{}
	for _, msg := range m.messages {
		if msg.CampaignID != campaignID {
			continue
		}
		entry := model.MessageWithRecipient{CampaignMessage: *msg}
		if c, ok := m.customers.customers[msg.CustomerID]; ok {
			entry.Recipient = *c
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memMessageRepo) UpdateContent(_ context.Context, id, content string) error {
	if msg, ok := m.messages[id]; ok {
		msg.RenderedContent = content
	}
	return nil
}

func (m *memMessageRepo) UpdateStatus(_ context.Context, id string, status model.MessageStatus, lastError string) error {
	if msg, ok := m.messages[id]; ok {
		msg.Status = status
		msg.LastError = lastError
		msg.RetryCount++
	}
	return nil
}

func (m *memMessageRepo) CountByStatus(_ context.Context, campaignID string) (map[string]int, error) {
	stats := map[string]int{"pending": 0, "sent": 0, "failed": 0}
	for _, msg := range m.messages {
		if msg.CampaignID == campaignID {
			stats[string(msg.Status)]++
		}
	}
	return stats, nil
}

func (m *memMessageRepo) PendingCount(_ context.Context, campaignID string) (int, error) {
	count := 0
	for _, msg := range m.messages {
		if msg.CampaignID == campaignID && msg.Status == model.MessagePending {
			count++
		}
	}
	return count, nil
}

type memProfileRepo struct {
	profiles map[string]*model.UserProfile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: map[string]*model.UserProfile{}}
}

func (m *memProfileRepo) Create(_ context.Context, p *model.UserProfile) error {
	for _, existing := range m.profiles {
		if existing.Email == p.Email {
			return apperrors.Validation("an account with this email already exists")
		}
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	clone := *p
	m.profiles[p.UserID] = &clone
	return nil
}

func (m *memProfileRepo) GetByID(_ context.Context, userID string) (*model.UserProfile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	clone := *p
	return &clone, nil
}

func (m *memProfileRepo) GetByEmail(_ context.Context, email string) (*model.UserProfile, error) {
	for _, p := range m.profiles {
		if p.Email == email {
			clone := *p
			return &clone, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (m *memProfileRepo) ListPending(_ context.Context) ([]model.UserProfile, error) {
	out := []model.UserProfile{}
	for _, p := range m.profiles {
		if p.Status == model.StatusPending {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *memProfileRepo) BatchUpdate(_ context.Context, userIDs []string, changes repository.ProfileChanges) ([]model.UserProfile, error) {
	out := []model.UserProfile{}
	for _, id := range userIDs {
		p, ok := m.profiles[id]
		if !ok {
			continue
		}
		if changes.Status != nil {
			p.Status = *changes.Status
		}
		if changes.Role != nil {
			p.Role = *changes.Role
		}
		if changes.ApprovedAt != nil {
			t := *changes.ApprovedAt
			p.ApprovedAt = &t
		}
		p.UpdatedAt = time.Now().UTC()
		out = append(out, *p)
	}
	return out, nil
}

func (m *memProfileRepo) UpdateStatus(_ context.Context, userID string, status model.AccountStatus) (*model.UserProfile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	clone := *p
	return &clone, nil
}

func (m *memProfileRepo) CountByStatus(_ context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, p := range m.profiles {
		counts[string(p.Status)]++
	}
	return counts, nil
}

// snapshot returns a value copy of every stored profile, for
// before/after mutation checks.
func (m *memProfileRepo) snapshot() map[string]model.UserProfile {
	out := map[string]model.UserProfile{}
	for id, p := range m.profiles {
		out[id] = *p
	}
	return out
}

type memInviteRepo struct {
	invites map[string]*model.InviteCode
}

func newMemInviteRepo() *memInviteRepo {
	return &memInviteRepo{invites: map[string]*model.InviteCode{}}
}

func (m *memInviteRepo) Create(_ context.Context, invite *model.InviteCode) error {
	invite.CreatedAt = time.Now().UTC()
	clone := *invite
	m.invites[invite.Code] = &clone
	return nil
}

func (m *memInviteRepo) Consume(_ context.Context, code, usedBy string, now time.Time) error {
	invite, ok := m.invites[code]
	if !ok || invite.Used || !invite.ExpiresAt.After(now) {
		return apperrors.Validation("invalid or expired invite code")
	}
	invite.Used = true
	invite.UsedBy = &usedBy
	invite.UsedAt = &now
	return nil
}

// recordingQueue captures published payloads.
type recordingQueue struct {
	published []any
	failWith  error
}

func (q *recordingQueue) Publish(_ string, payload any) error {
	if q.failWith != nil {
		return q.failWith
	}
	q.published = append(q.published, payload)
	return nil
}

func (q *recordingQueue) Subscribe(string, func(payload any) error) error { return nil }

var (
	_ repository.CampaignRepositoryInterface = (*memCampaignRepo)(nil)
	_ repository.CustomerRepositoryInterface = (*memCustomerRepo)(nil)
	_ repository.MessageRepositoryInterface  = (*memMessageRepo)(nil)
	_ repository.ProfileRepositoryInterface  = (*memProfileRepo)(nil)
	_ repository.InviteRepositoryInterface   = (*memInviteRepo)(nil)
)
