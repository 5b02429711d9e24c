// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"net/http"
)

type SendMailRequest struct {
	Address     string `json:"address"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	FromAddress string `json:"fromAddress,omitempty"`
}

type SendInfo struct {
	Host       string   `json:"host" yaml:"host"`
	Port       int      `json:"port" yaml:"port"`
	Recipients []string `json:"recipients" yaml:"recipients"`
	MessageID  string   `json:"messageId" yaml:"messageId"`
}

type MailResult struct {
	Message    string    `json:"message" yaml:"message"`
	Suppressed bool      `json:"suppressed" yaml:"suppressed"`
	Info       *SendInfo `json:"info,omitempty" yaml:"info,omitempty"`
}

type MailService struct {
	client *Client
}

func (c *Client) Mail() *MailService {
	return &MailService{client: c}
}

func (m *MailService) Send(ctx context.Context, req SendMailRequest) (*MailResult, error) {
	var out MailResult
	if err := m.client.do(ctx, http.MethodPost, "mail/send", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
