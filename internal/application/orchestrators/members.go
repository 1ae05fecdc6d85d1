package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domainMember "checkin/internal/domain/member"
)

// CreateMemberInput carries input for registering a member.
type CreateMemberInput struct {
	Name string `validate:"required,max=100" label:"name"`
}

// RenameMemberInput carries input for renaming a member.
type RenameMemberInput struct {
	MemberID int    `validate:"gt=0" label:"member"`
	Name     string `validate:"required,max=100" label:"name"`
}

// DeleteMemberInput carries input for removing a member.
type DeleteMemberInput struct {
	MemberID int `validate:"gt=0" label:"member"`
}

// MemberDeps holds dependencies for the member orchestrators.
type MemberDeps struct {
	MemberAPI MemberAPI
}

// ExecuteCreateMember registers a member under a trimmed name.
// PRE: none
// POST: returns the member as re-read from the API
func ExecuteCreateMember(ctx context.Context, input CreateMemberInput, deps MemberDeps) (domainMember.Member, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return domainMember.Member{}, err
	}

	id, err := deps.MemberAPI.CreateMember(ctx, input.Name)
	if err != nil {
		return domainMember.Member{}, fmt.Errorf("create member: %w", err)
	}
	m, err := deps.MemberAPI.GetMember(ctx, id)
	if err != nil {
		return domainMember.Member{}, fmt.Errorf("reload member %d: %w", id, err)
	}

	slog.Info("member_event", "event", "member_created", "member_id", m.ID, "name", m.Name)
	return m, nil
}

// ExecuteRenameMember changes a member's display name.
// PRE: MemberID exists
// POST: returns the member as re-read from the API
func ExecuteRenameMember(ctx context.Context, input RenameMemberInput, deps MemberDeps) (domainMember.Member, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return domainMember.Member{}, err
	}

	if err := deps.MemberAPI.UpdateMember(ctx, input.MemberID, input.Name); err != nil {
		return domainMember.Member{}, fmt.Errorf("rename member %d: %w", input.MemberID, err)
	}
	m, err := deps.MemberAPI.GetMember(ctx, input.MemberID)
	if err != nil {
		return domainMember.Member{}, fmt.Errorf("reload member %d: %w", input.MemberID, err)
	}

	slog.Info("member_event", "event", "member_renamed", "member_id", m.ID, "name", m.Name)
	return m, nil
}

// ExecuteDeleteMember removes a member.
// PRE: MemberID exists
// POST: returns the member list as re-read from the API
func ExecuteDeleteMember(ctx context.Context, input DeleteMemberInput, deps MemberDeps) ([]domainMember.Member, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if err := deps.MemberAPI.DeleteMember(ctx, input.MemberID); err != nil {
		return nil, fmt.Errorf("delete member %d: %w", input.MemberID, err)
	}
	members, err := deps.MemberAPI.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload members: %w", err)
	}

	slog.Info("member_event", "event", "member_deleted", "member_id", input.MemberID)
	return members, nil
}
