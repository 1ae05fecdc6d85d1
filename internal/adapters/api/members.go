package api

import (
	"context"
	"net/http"
	"strconv"

	domainMember "checkin/internal/domain/member"
)

// ListMembers returns every member in API order.
func (c *Client) ListMembers(ctx context.Context) ([]domainMember.Member, error) {
	var dtos []memberDTO
	if err := c.do(ctx, call{method: http.MethodGet, route: "test-members", path: "test-members", out: &dtos}); err != nil {
		return nil, err
	}
	members := make([]domainMember.Member, len(dtos))
	for i, d := range dtos {
		members[i] = d.toDomain()
	}
	return members, nil
}

// GetMember returns one member.
func (c *Client) GetMember(ctx context.Context, id int) (domainMember.Member, error) {
	var dto memberDTO
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "test-members/{id}",
		path:   "test-members/" + strconv.Itoa(id),
		out:    &dto,
	})
	if err != nil {
		return domainMember.Member{}, err
	}
	if dto.ID == 0 {
		dto.ID = id
	}
	return dto.toDomain(), nil
}

// CreateMember registers a member and returns the new id.
func (c *Client) CreateMember(ctx context.Context, name string) (int, error) {
	var resp struct {
		ID int `json:"testMemberId"`
	}
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "test-members",
		path:   "test-members",
		body:   memberNameRequest{Name: name},
		out:    &resp,
	})
	return resp.ID, err
}

// UpdateMember renames a member.
func (c *Client) UpdateMember(ctx context.Context, id int, name string) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		route:  "test-members/{id}",
		path:   "test-members/" + strconv.Itoa(id),
		body:   memberNameRequest{Name: name},
	})
}

// DeleteMember removes a member.
func (c *Client) DeleteMember(ctx context.Context, id int) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "test-members/{id}",
		path:   "test-members/" + strconv.Itoa(id),
	})
}
