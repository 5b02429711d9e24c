// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/telekom/notification-service/pkg/apiresponses"
	"github.com/telekom/notification-service/pkg/identity"
	"github.com/telekom/notification-service/pkg/mail"
	"github.com/telekom/notification-service/pkg/system"
)

// SendMailRequest is the body of POST /api/mail/send.
type SendMailRequest struct {
	Address     string `json:"address"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	FromAddress string `json:"fromAddress"`
}

// MailController serves /api/mail.
type MailController struct {
	mailer     mail.Mailer
	log        *zap.SugaredLogger
	middleware []gin.HandlerFunc
}

// NewMailController wires sendMail. middleware typically is authentication
// followed by the per-user mail rate limit.
func NewMailController(log *zap.SugaredLogger, mailer mail.Mailer, middleware ...gin.HandlerFunc) *MailController {
	return &MailController{mailer: mailer, log: log.Named("mail-api"), middleware: middleware}
}

func (*MailController) BasePath() string {
	return "mail"
}

func (mc *MailController) Handlers() []gin.HandlerFunc {
	return mc.middleware
}

func (mc *MailController) Register(rg *gin.RouterGroup) error {
	rg.POST("send", InstrumentedHandler("sendMail", mc.handleSendMail))
	return nil
}

func (mc *MailController) handleSendMail(c *gin.Context) {
	reqLog := system.GetReqLogger(c, mc.log)
	id, err := identity.FromContext(c)
	if err != nil {
		respondError(c, "send mail", err, reqLog)
		return
	}

	var req SendMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresponses.RespondBadRequestWithDetails(c, "invalid sendMail request body", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), APIContextTimeout)
	defer cancel()

	res, err := mc.mailer.SendMail(ctx, mail.Request{
		Address:     req.Address,
		Subject:     req.Subject,
		Body:        req.Body,
		FromAddress: req.FromAddress,
		Actor:       id.Username,
	})
	if err != nil {
		respondError(c, "send mail", err, reqLog)
		return
	}
	apiresponses.RespondOK(c, res)
}
