// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/telekom/notification-service/pkg/apiresponses"
	"github.com/telekom/notification-service/pkg/assignee"
	"github.com/telekom/notification-service/pkg/identity"
	"github.com/telekom/notification-service/pkg/mail"
	"github.com/telekom/notification-service/pkg/notification"
	"github.com/telekom/notification-service/pkg/store"
)

// respondError maps the sentinel errors of the service packages to a status.
func respondError(c *gin.Context, operation string, err error, log *zap.SugaredLogger) {
	switch {
	case errors.Is(err, identity.ErrNoIdentity):
		apiresponses.RespondUnauthorized(c, "")
	case errors.Is(err, notification.ErrValidation),
		errors.Is(err, mail.ErrValidation),
		errors.Is(err, assignee.ErrValidation),
		errors.Is(err, store.ErrInvalidQuery):
		log.Debugw("Rejected invalid request", "operation", operation, "error", err)
		apiresponses.RespondBadRequest(c, err.Error())
	case errors.Is(err, store.ErrGroupNotFound):
		apiresponses.RespondNotFound(c, "assignee group", c.Param("name"))
	case errors.Is(err, mail.ErrDelivery):
		log.Warnw("Mail delivery failed", "operation", operation, "error", err)
		apiresponses.RespondBadGateway(c, "failed to "+operation, err)
	default:
		apiresponses.RespondInternalError(c, operation, err, log)
	}
}
