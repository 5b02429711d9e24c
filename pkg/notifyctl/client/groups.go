// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"net/http"
	"net/url"
)

type AssigneeGroupService struct {
	client *Client
}

func (c *Client) AssigneeGroups() *AssigneeGroupService {
	return &AssigneeGroupService{client: c}
}

func (s *AssigneeGroupService) List(ctx context.Context) (map[string][]string, error) {
	groups := map[string][]string{}
	if err := s.client.do(ctx, http.MethodGet, "assigneeGroups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *AssigneeGroupService) Get(ctx context.Context, name string) ([]string, error) {
	var users []string
	if err := s.client.do(ctx, http.MethodGet, "assigneeGroups/"+url.PathEscape(name), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *AssigneeGroupService) Set(ctx context.Context, name string, users []string) error {
	if users == nil {
		users = []string{}
	}
	body := struct {
		Users []string `json:"users"`
	}{Users: users}
	return s.client.do(ctx, http.MethodPut, "assigneeGroups/"+url.PathEscape(name), body, nil)
}

func (s *AssigneeGroupService) Delete(ctx context.Context, name string) error {
	return s.client.do(ctx, http.MethodDelete, "assigneeGroups/"+url.PathEscape(name), nil, nil)
}

// ForUser lists the groups containing user, as visible to the caller.
func (s *AssigneeGroupService) ForUser(ctx context.Context, user string) (map[string][]string, error) {
	groups := map[string][]string{}
	if err := s.client.do(ctx, http.MethodGet, "users/"+url.PathEscape(user)+"/assigneeGroups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}
