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
	"github.com/telekom/notification-service/pkg/notification"
	"github.com/telekom/notification-service/pkg/system"
)

// AddNotificationRequest is the body of POST /api/notifications. Lifetime
// accepts a number or a numeric string of seconds.
type AddNotificationRequest struct {
	User        string      `json:"user"`
	Message     string      `json:"message"`
	Lifetime    interface{} `json:"lifetime,omitempty"`
	DeferToMail *bool       `json:"deferToMail,omitempty"`
}

// AddNotificationResponse is returned with 201.
type AddNotificationResponse struct {
	ID string `json:"id"`
}

// NotificationSelection is the body of the remove, read and unread routes.
// An empty id list selects all notifications of the user.
type NotificationSelection struct {
	User string   `json:"user"`
	IDs  []string `json:"ids"`
}

// NotificationController serves /api/notifications.
type NotificationController struct {
	service    *notification.Service
	log        *zap.SugaredLogger
	middleware []gin.HandlerFunc
}

func NewNotificationController(log *zap.SugaredLogger, service *notification.Service, middleware ...gin.HandlerFunc) *NotificationController {
	return &NotificationController{service: service, log: log.Named("notification-api"), middleware: middleware}
}

func (*NotificationController) BasePath() string {
	return "notifications"
}

func (nc *NotificationController) Handlers() []gin.HandlerFunc {
	return nc.middleware
}

func (nc *NotificationController) Register(rg *gin.RouterGroup) error {
	rg.POST("", InstrumentedHandler("addNotificationForUser", nc.handleAdd))
	rg.POST("query", InstrumentedHandler("getNotifications", nc.handleQuery))
	rg.POST("remove", InstrumentedHandler("removeNotificationsForUser", nc.handleRemove))
	rg.POST("read", InstrumentedHandler("markNotificationsAsRead", nc.selectionHandler("mark notifications as read", nc.service.MarkNotificationsAsRead)))
	rg.POST("unread", InstrumentedHandler("markNotificationsAsNotRead", nc.selectionHandler("mark notifications as not read", nc.service.MarkNotificationsAsNotRead)))
	return nil
}

func (nc *NotificationController) handleAdd(c *gin.Context) {
	reqLog := system.GetReqLogger(c, nc.log)
	id, err := identity.FromContext(c)
	if err != nil {
		respondError(c, "add notification", err, reqLog)
		return
	}
	var req AddNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresponses.RespondBadRequestWithDetails(c, "invalid notification body", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), APIContextTimeout)
	defer cancel()
	nid, err := nc.service.AddNotificationForUser(ctx, id.Username, notification.AddRequest{
		User:        req.User,
		Message:     req.Message,
		Lifetime:    req.Lifetime,
		DeferToMail: req.DeferToMail,
	})
	if err != nil {
		respondError(c, "add notification", err, reqLog)
		return
	}
	apiresponses.RespondCreated(c, AddNotificationResponse{ID: nid})
}

func (nc *NotificationController) handleQuery(c *gin.Context) {
	reqLog := system.GetReqLogger(c, nc.log)
	id, err := identity.FromContext(c)
	if err != nil {
		respondError(c, "query notifications", err, reqLog)
		return
	}
	var q notification.Query
	// An empty body is a query without filter.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&q); err != nil {
			apiresponses.RespondBadRequestWithDetails(c, "invalid notification query", err.Error())
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), APIContextTimeout)
	defer cancel()
	out, err := nc.service.GetNotifications(ctx, id, q)
	if err != nil {
		respondError(c, "query notifications", err, reqLog)
		return
	}
	apiresponses.RespondOK(c, out)
}

func (nc *NotificationController) handleRemove(c *gin.Context) {
	nc.selectionHandler("remove notifications", nc.service.RemoveNotificationsForUser)(c)
}

type selectionFunc func(ctx context.Context, id identity.Identity, user string, ids []string) error

func (nc *NotificationController) selectionHandler(operation string, apply selectionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := system.GetReqLogger(c, nc.log)
		id, err := identity.FromContext(c)
		if err != nil {
			respondError(c, operation, err, reqLog)
			return
		}
		var sel NotificationSelection
		if err := c.ShouldBindJSON(&sel); err != nil {
			apiresponses.RespondBadRequestWithDetails(c, "invalid notification selection", err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), APIContextTimeout)
		defer cancel()
		if err := apply(ctx, id, sel.User, sel.IDs); err != nil {
			respondError(c, operation, err, reqLog)
			return
		}
		apiresponses.RespondNoContent(c)
	}
}
