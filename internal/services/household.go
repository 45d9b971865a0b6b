package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homesync/homesync-backend/internal/apierr"
	"github.com/homesync/homesync-backend/internal/logger"
	"github.com/homesync/homesync-backend/internal/repos"
	"github.com/homesync/homesync-backend/internal/types"
)

// HouseholdWithMembers is the directory view the grid loads on startup.
type HouseholdWithMembers struct {
	types.Household
	Members []*types.HouseholdMember `json:"members"`
}

type HouseholdService interface {
	Create(ctx context.Context, creator uuid.UUID, name string) (*types.Household, error)
	Get(ctx context.Context, householdID uuid.UUID) (*HouseholdWithMembers, error)
	AddMember(ctx context.Context, householdID, userID uuid.UUID, role, displayName, color string) (*types.HouseholdMember, error)
	Membership(ctx context.Context, householdID, userID uuid.UUID) (*types.HouseholdMember, error)
	ListMemberships(ctx context.Context, userID uuid.UUID) ([]*types.HouseholdMember, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, displayName, color string) ([]*types.HouseholdMember, error)
}

type householdService struct {
	db         *gorm.DB
	log        *logger.Logger
	households repos.HouseholdRepo
	members    repos.MemberRepo
}

func NewHouseholdService(db *gorm.DB, log *logger.Logger, households repos.HouseholdRepo, members repos.MemberRepo) HouseholdService {
	return &householdService{
		db:         db,
		log:        log.With("service", "HouseholdService"),
		households: households,
		members:    members,
	}
}

func (s *householdService) Create(ctx context.Context, creator uuid.UUID, name string) (*types.Household, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apierr.Validation("household name must not be empty")
	}

	var household *types.Household
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		household, err = s.households.Create(ctx, tx, &types.Household{Name: strings.TrimSpace(name)})
		if err != nil {
			return err
		}
		// Creator joins as admin.
		_, err = s.members.Create(ctx, tx, &types.HouseholdMember{
			HouseholdID: household.ID,
			UserID:      creator,
			Role:        types.RoleAdmin,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return household, nil
}

func (s *householdService) Get(ctx context.Context, householdID uuid.UUID) (*HouseholdWithMembers, error) {
	household, err := s.households.GetByID(ctx, nil, householdID)
	if err != nil {
		return nil, err
	}
	members, err := s.members.ListByHousehold(ctx, nil, householdID)
	if err != nil {
		return nil, err
	}
	return &HouseholdWithMembers{Household: *household, Members: members}, nil
}

func (s *householdService) AddMember(ctx context.Context, householdID, userID uuid.UUID, role, displayName, color string) (*types.HouseholdMember, error) {
	if role == "" {
		role = types.RoleMember
	}
	if role != types.RoleAdmin && role != types.RoleMember {
		return nil, apierr.Validation("unknown role %q", role)
	}
	if _, err := s.households.GetByID(ctx, nil, householdID); err != nil {
		return nil, err
	}
	return s.members.Create(ctx, nil, &types.HouseholdMember{
		HouseholdID: householdID,
		UserID:      userID,
		Role:        role,
		DisplayName: displayName,
		Color:       color,
	})
}

func (s *householdService) Membership(ctx context.Context, householdID, userID uuid.UUID) (*types.HouseholdMember, error) {
	return s.members.GetByHouseholdAndUser(ctx, nil, householdID, userID)
}

func (s *householdService) ListMemberships(ctx context.Context, userID uuid.UUID) ([]*types.HouseholdMember, error) {
	return s.members.ListByUser(ctx, nil, userID)
}

func (s *householdService) UpdateProfile(ctx context.Context, userID uuid.UUID, displayName, color string) ([]*types.HouseholdMember, error) {
	if strings.TrimSpace(displayName) == "" {
		return nil, apierr.Validation("display name must not be empty")
	}
	if err := s.members.UpdateProfileByUser(ctx, nil, userID, strings.TrimSpace(displayName), color); err != nil {
		return nil, err
	}
	return s.members.ListByUser(ctx, nil, userID)
}
