package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hireflow/backend/internal/application/identity"
	domain "github.com/hireflow/backend/internal/domain/identity"
)

// OrganizationHandler serves the organization, its members and its roles
type OrganizationHandler struct {
	BaseHandler
	orgService    *identity.OrganizationService
	memberService *identity.MemberService
	roleService   *identity.RoleService
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(orgService *identity.OrganizationService, memberService *identity.MemberService, roleService *identity.RoleService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService:    orgService,
		memberService: memberService,
		roleService:   roleService,
	}
}

// Get returns the current organization. GET /organization
func (h *OrganizationHandler) Get(c *gin.Context) {
	orgID, _, ok := h.Identity(c)
	if !ok {
		return
	}
	org, err := h.orgService.Get(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, org)
}

// Update edits the organization name and website. PUT /organization
func (h *OrganizationHandler) Update(c *gin.Context) {
	orgID, _, ok := h.Identity(c)
	if !ok {
		return
	}
	var req UpdateOrganizationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	org, err := h.orgService.Update(c.Request.Context(), orgID, identity.UpdateOrganizationInput{
		Name:    req.Name,
		Website: req.Website,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, org)
}

// ListMembers returns a page of members. GET /organization/members
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	orgID, _, ok := h.Identity(c)
	if !ok {
		return
	}
	var q MemberListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	result, err := h.memberService.List(c.Request.Context(), orgID, domain.MemberFilter{
		Keyword:  q.Search,
		RoleCode: q.Role,
		Status:   domain.UserStatus(q.Status),
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Members, result.Total, result.Page, result.PageSize)
}

// GetMember returns a member. GET /organization/members/:id
func (h *OrganizationHandler) GetMember(c *gin.Context) {
	orgID, _, ok := h.Identity(c)
	if !ok {
		return
	}
	memberID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	member, err := h.memberService.Get(c.Request.Context(), orgID, memberID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// AddMember creates a member with an initial password. POST /organization/members
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	orgID, actorID, ok := h.Identity(c)
	if !ok {
		return
	}
	var req AddMemberRequest
	if !h.BindJSON(c, &req) {
		return
	}
	member, err := h.memberService.Add(c.Request.Context(), orgID, actorID, identity.AddMemberInput{
		Email:     req.Email,
		FullName:  req.FullName,
		Password:  req.Password,
		RoleCodes: req.RoleCodes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, member)
}

// UpdateMemberRoles replaces a member's roles. PUT /organization/members/:id/roles
func (h *OrganizationHandler) UpdateMemberRoles(c *gin.Context) {
	orgID, actorID, ok := h.Identity(c)
	if !ok {
		return
	}
	memberID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateMemberRolesRequest
	if !h.BindJSON(c, &req) {
		return
	}
	member, err := h.memberService.UpdateRoles(c.Request.Context(), orgID, actorID, memberID, req.RoleCodes)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// DeactivateMember blocks sign-in and revokes the member's sessions.
// POST /organization/members/:id/deactivate
func (h *OrganizationHandler) DeactivateMember(c *gin.Context) {
	orgID, actorID, ok := h.Identity(c)
	if !ok {
		return
	}
	memberID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	member, err := h.memberService.Deactivate(c.Request.Context(), orgID, actorID, memberID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// ReactivateMember POST /organization/members/:id/reactivate
func (h *OrganizationHandler) ReactivateMember(c *gin.Context) {
	orgID, _, ok := h.Identity(c)
	if !ok {
		return
	}
	memberID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	member, err := h.memberService.Reactivate(c.Request.Context(), orgID, memberID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// RemoveMember revokes grants, drops roles and deactivates the member.
// DELETE /organization/members/:id
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	orgID, actorID, ok := h.Identity(c)
	if !ok {
		return
	}
	memberID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.memberService.Remove(c.Request.Context(), orgID, actorID, memberID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListRoles GET /organization/roles
func (h *OrganizationHandler) ListRoles(c *gin.Context) {
	orgID, _, ok := h.Identity(c)
	if !ok {
		return
	}
	roles, err := h.roleService.List(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, roles)
}

// CreateRole creates a custom role. POST /organization/roles
func (h *OrganizationHandler) CreateRole(c *gin.Context) {
	orgID, actorID, ok := h.Identity(c)
	if !ok {
		return
	}
	var req CreateRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	role, err := h.roleService.Create(c.Request.Context(), orgID, actorID, identity.CreateRoleInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, role)
}

// UpdateRole edits a custom role. PUT /organization/roles/:id
func (h *OrganizationHandler) UpdateRole(c *gin.Context) {
	orgID, _, ok := h.Identity(c)
	if !ok {
		return
	}
	roleID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	role, err := h.roleService.Update(c.Request.Context(), orgID, roleID, identity.UpdateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, role)
}

// DeleteRole removes an unassigned custom role. DELETE /organization/roles/:id
func (h *OrganizationHandler) DeleteRole(c *gin.Context) {
	orgID, _, ok := h.Identity(c)
	if !ok {
		return
	}
	roleID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.roleService.Delete(c.Request.Context(), orgID, roleID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
