// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/telekom/notification-service/pkg/apiresponses"
	"github.com/telekom/notification-service/pkg/assignee"
	"github.com/telekom/notification-service/pkg/identity"
	"github.com/telekom/notification-service/pkg/system"
)

// SetAssigneeGroupRequest is the body of PUT /api/assigneeGroups/:name.
type SetAssigneeGroupRequest struct {
	Users []string `json:"users"`
}

// AssigneeGroupController serves /api/assigneeGroups.
type AssigneeGroupController struct {
	manager    *assignee.Manager
	log        *zap.SugaredLogger
	middleware []gin.HandlerFunc
}

func NewAssigneeGroupController(log *zap.SugaredLogger, manager *assignee.Manager, middleware ...gin.HandlerFunc) *AssigneeGroupController {
	return &AssigneeGroupController{manager: manager, log: log.Named("assignee-api"), middleware: middleware}
}

func (*AssigneeGroupController) BasePath() string {
	return "assigneeGroups"
}

func (gc *AssigneeGroupController) Handlers() []gin.HandlerFunc {
	return gc.middleware
}

func (gc *AssigneeGroupController) Register(rg *gin.RouterGroup) error {
	rg.GET("", InstrumentedHandler("getAssigneeGroups", gc.handleList))
	rg.GET(":name", InstrumentedHandler("getUsersInAssigneeGroup", gc.handleGet))
	rg.PUT(":name", InstrumentedHandler("setAssigneeGroup", gc.handleSet))
	rg.DELETE(":name", InstrumentedHandler("deleteAssigneeGroup", gc.handleDelete))
	return nil
}

func (gc *AssigneeGroupController) handleSet(c *gin.Context) {
	reqLog := system.GetReqLogger(c, gc.log)
	id, err := identity.FromContext(c)
	if err != nil {
		respondError(c, "set assignee group", err, reqLog)
		return
	}
	var req SetAssigneeGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresponses.RespondBadRequestWithDetails(c, "invalid assignee group body", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), APIContextTimeout)
	defer cancel()
	if err := gc.manager.SetAssigneeGroup(ctx, id.Username, c.Param("name"), req.Users); err != nil {
		respondError(c, "set assignee group", err, reqLog)
		return
	}
	apiresponses.RespondNoContent(c)
}

func (gc *AssigneeGroupController) handleGet(c *gin.Context) {
	reqLog := system.GetReqLogger(c, gc.log)
	ctx, cancel := context.WithTimeout(c.Request.Context(), APIContextTimeout)
	defer cancel()

	users, err := gc.manager.GetUsersInAssigneeGroup(ctx, c.Param("name"))
	if err != nil {
		respondError(c, "get assignee group", err, reqLog)
		return
	}
	apiresponses.RespondOK(c, users)
}

func (gc *AssigneeGroupController) handleDelete(c *gin.Context) {
	reqLog := system.GetReqLogger(c, gc.log)
	id, err := identity.FromContext(c)
	if err != nil {
		respondError(c, "delete assignee group", err, reqLog)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), APIContextTimeout)
	defer cancel()

	if err := gc.manager.DeleteAssigneeGroup(ctx, id.Username, c.Param("name")); err != nil {
		respondError(c, "delete assignee group", err, reqLog)
		return
	}
	apiresponses.RespondNoContent(c)
}

func (gc *AssigneeGroupController) handleList(c *gin.Context) {
	reqLog := system.GetReqLogger(c, gc.log)
	ctx, cancel := context.WithTimeout(c.Request.Context(), APIContextTimeout)
	defer cancel()

	groups, err := gc.manager.GetAssigneeGroups(ctx)
	if err != nil {
		respondError(c, "list assignee groups", err, reqLog)
		return
	}
	apiresponses.RespondOK(c, groups)
}

// UserController serves /api/users.
type UserController struct {
	manager    *assignee.Manager
	log        *zap.SugaredLogger
	middleware []gin.HandlerFunc
}

func NewUserController(log *zap.SugaredLogger, manager *assignee.Manager, middleware ...gin.HandlerFunc) *UserController {
	return &UserController{manager: manager, log: log.Named("user-api"), middleware: middleware}
}

func (*UserController) BasePath() string {
	return "users"
}

func (uc *UserController) Handlers() []gin.HandlerFunc {
	return uc.middleware
}

func (uc *UserController) Register(rg *gin.RouterGroup) error {
	rg.GET(":user/assigneeGroups", InstrumentedHandler("getAssigneeGroupsForUser", uc.handleGroupsForUser))
	return nil
}

func (uc *UserController) handleGroupsForUser(c *gin.Context) {
	reqLog := system.GetReqLogger(c, uc.log)
	id, err := identity.FromContext(c)
	if err != nil {
		respondError(c, "list assignee groups of user", err, reqLog)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), APIContextTimeout)
	defer cancel()

	groups, err := uc.manager.GetAssigneeGroupsForUser(ctx, id, c.Param("user"))
	if err != nil {
		respondError(c, "list assignee groups of user", err, reqLog)
		return
	}
	apiresponses.RespondOK(c, groups)
}
