package projections

import (
	"context"
	"fmt"
	"strings"

	domainMember "checkin/internal/domain/member"
)

// GetMemberListQuery carries query parameters.
type GetMemberListQuery struct {
	Search string // optional name substring
}

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	Members []domainMember.Member // matching members, API order
	Total   int                   // all members before filtering
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	MemberReader MemberReader
}

// QueryGetMemberList lists members for the member picker on the home page.
// PRE: none
// POST: Members contains only names matching Search (case-insensitive)
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps) (GetMemberListResult, error) {
	members, err := deps.MemberReader.ListMembers(ctx)
	if err != nil {
		return GetMemberListResult{}, fmt.Errorf("list members: %w", err)
	}
	return GetMemberListResult{
		Members: domainMember.FilterByName(members, strings.TrimSpace(query.Search)),
		Total:   len(members),
	}, nil
}
