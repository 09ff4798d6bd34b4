package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamroster/server/internal/module/identity"
	apperrors "github.com/teamroster/server/internal/shared/errors"
	"github.com/teamroster/server/internal/shared/response"
)

// Handler handles HTTP requests for accounts, members and invites.
type Handler struct {
	members *MembershipService
	invites *InviteService
}

// NewHandler creates a new account handler.
func NewHandler(members *MembershipService, invites *InviteService) *Handler {
	return &Handler{
		members: members,
		invites: invites,
	}
}

// RegisterRoutes registers account routes on an authenticated group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	accounts := r.Group("/accounts")
	{
		accounts.POST("", h.CreateAccount)

		// Members
		accounts.GET("/:account_id/members", h.ListMembers)
		accounts.POST("/:account_id/members", h.AddMember)
		accounts.GET("/:account_id/members/:user_id", h.GetMember)
		accounts.PATCH("/:account_id/members/:user_id", h.ChangeRole)

		// Invites
		accounts.POST("/:account_id/invites", h.CreateInvite)
	}

	invites := r.Group("/invites")
	{
		invites.GET("/:invite_id", h.ResolveInvite)
		invites.POST("/:invite_id/accept", h.AcceptInvite)
	}
}

// ========== Account Handlers ==========

// CreateAccount handles account creation.
//
//	@Summary		Create account
//	@Description	Create an account owned and administered by the caller
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateAccountRequest	true	"Create account request"
//	@Success		201		{object}	CreateAccountResponse
//	@Failure		400		{object}	apperrors.ErrorResponse
//	@Failure		401		{object}	apperrors.ErrorResponse
//	@Router			/accounts [post]
func (h *Handler) CreateAccount(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}

	var req CreateAccountRequest
	if !h.bind(c, &req) {
		return
	}

	account, err := h.members.CreateAccount(c.Request.Context(), caller.ID, req.AccountName)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, &CreateAccountResponse{AccountID: account.ID})
}

// ========== Member Handlers ==========

// ListMembers handles listing an account's roster.
//
//	@Summary		List members
//	@Description	List every member of an account. Admins only.
//	@Tags			Members
//	@Produce		json
//	@Security		BearerAuth
//	@Param			account_id	path		string	true	"Account ID"
//	@Success		200			{object}	ListMembersResponse
//	@Failure		403			{object}	apperrors.ErrorResponse
//	@Failure		404			{object}	apperrors.ErrorResponse
//	@Router			/accounts/{account_id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}

	members, err := h.members.ListMembers(c.Request.Context(), c.Param("account_id"), caller.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := &ListMembersResponse{Members: make([]*MemberResponse, len(members))}
	for i := range members {
		resp.Members[i] = members[i].ToResponse()
	}
	c.JSON(http.StatusOK, resp)
}

// GetMember handles reading one roster entry.
//
//	@Summary		Get member
//	@Description	Get one member of an account. Admins only.
//	@Tags			Members
//	@Produce		json
//	@Security		BearerAuth
//	@Param			account_id	path		string	true	"Account ID"
//	@Param			user_id		path		string	true	"User ID"
//	@Success		200			{object}	MemberResponse
//	@Failure		403			{object}	apperrors.ErrorResponse
//	@Failure		404			{object}	apperrors.ErrorResponse
//	@Router			/accounts/{account_id}/members/{user_id} [get]
func (h *Handler) GetMember(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}

	member, err := h.members.GetMember(c.Request.Context(), c.Param("account_id"), caller.ID, c.Param("user_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, member.ToResponse())
}

// AddMember handles adding a registered user by email.
//
//	@Summary		Add member
//	@Description	Add an existing user to an account by email. Admins only.
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			account_id	path		string				true	"Account ID"
//	@Param			request		body		AddMemberRequest	true	"Add member request"
//	@Success		200			{object}	ResultResponse
//	@Failure		400			{object}	apperrors.ErrorResponse
//	@Failure		403			{object}	apperrors.ErrorResponse
//	@Failure		404			{object}	apperrors.ErrorResponse
//	@Failure		409			{object}	apperrors.ErrorResponse
//	@Router			/accounts/{account_id}/members [post]
func (h *Handler) AddMember(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}

	var req AddMemberRequest
	if !h.bind(c, &req) {
		return
	}
	role, err := ParseRole(req.Role)
	if err != nil {
		h.handleError(c, err)
		return
	}

	accountID := c.Param("account_id")
	if err := h.members.AddMemberByEmail(c.Request.Context(), accountID, caller.ID, req.Email, role); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, &ResultResponse{Result: resultOK, AccountID: accountID})
}

// ChangeRole handles promoting, demoting or removing a member.
//
//	@Summary		Change member role
//	@Description	Set a member's role to member or admin, or remove them. Admins only.
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			account_id	path		string				true	"Account ID"
//	@Param			user_id		path		string				true	"User ID"
//	@Param			request		body		ChangeRoleRequest	true	"Change role request"
//	@Success		200			{object}	ResultResponse
//	@Failure		400			{object}	apperrors.ErrorResponse
//	@Failure		403			{object}	apperrors.ErrorResponse
//	@Failure		404			{object}	apperrors.ErrorResponse
//	@Router			/accounts/{account_id}/members/{user_id} [patch]
func (h *Handler) ChangeRole(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}

	var req ChangeRoleRequest
	if !h.bind(c, &req) {
		return
	}
	change, err := ParseRoleChange(req.Role)
	if err != nil {
		h.handleError(c, err)
		return
	}

	err = h.members.ChangeRole(c.Request.Context(), c.Param("account_id"), caller.ID, c.Param("user_id"), change)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, &ResultResponse{Result: resultOK, Role: string(change)})
}

// ========== Invite Handlers ==========

// CreateInvite handles inviting an email address.
//
//	@Summary		Create invite
//	@Description	Invite an email address to join an account. Admins only.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			account_id	path		string				true	"Account ID"
//	@Param			request		body		CreateInviteRequest	true	"Create invite request"
//	@Success		201			{object}	ResultResponse
//	@Failure		400			{object}	apperrors.ErrorResponse
//	@Failure		403			{object}	apperrors.ErrorResponse
//	@Failure		429			{object}	apperrors.ErrorResponse
//	@Failure		500			{object}	apperrors.ErrorResponse
//	@Router			/accounts/{account_id}/invites [post]
func (h *Handler) CreateInvite(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}

	var req CreateInviteRequest
	if !h.bind(c, &req) {
		return
	}
	role, err := ParseRole(req.Role)
	if err != nil {
		h.handleError(c, err)
		return
	}

	inviteID, err := h.invites.CreateInvite(c.Request.Context(), c.Param("account_id"), caller, req.Email, role)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, &ResultResponse{Result: resultOK, InviteID: inviteID})
}

// ResolveInvite handles looking up an invite addressed to the caller.
//
//	@Summary		Resolve invite
//	@Description	Show which account an invite is for
//	@Tags			Invites
//	@Produce		json
//	@Security		BearerAuth
//	@Param			invite_id	path		string	true	"Invite ID"
//	@Success		200			{object}	InviteResponse
//	@Failure		403			{object}	apperrors.ErrorResponse
//	@Failure		404			{object}	apperrors.ErrorResponse
//	@Router			/invites/{invite_id} [get]
func (h *Handler) ResolveInvite(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}

	details, err := h.invites.ResolveInvite(c.Request.Context(), c.Param("invite_id"), caller.Email)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, details.ToResponse())
}

// AcceptInvite handles redeeming an invite.
//
//	@Summary		Accept invite
//	@Description	Join the invited account and consume the invite
//	@Tags			Invites
//	@Produce		json
//	@Security		BearerAuth
//	@Param			invite_id	path		string	true	"Invite ID"
//	@Success		200			{object}	ResultResponse
//	@Failure		403			{object}	apperrors.ErrorResponse
//	@Failure		404			{object}	apperrors.ErrorResponse
//	@Failure		410			{object}	apperrors.ErrorResponse
//	@Router			/invites/{invite_id}/accept [post]
func (h *Handler) AcceptInvite(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}

	accountID, err := h.invites.AcceptInvite(c.Request.Context(), c.Param("invite_id"), caller)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, &ResultResponse{Result: resultOK, AccountID: accountID})
}

// ========== Helpers ==========

func (h *Handler) getCaller(c *gin.Context) (identity.Caller, bool) {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		response.Error(c, apperrors.Unauthorized("not authenticated"))
		return identity.Caller{}, false
	}
	return caller, true
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, apperrors.InvalidArgument(err.Error()))
		return false
	}
	return true
}

var errorMappings = []response.ErrorMapping{
	{Err: ErrAccountNotFound, Status: http.StatusNotFound, Code: apperrors.CodeNotFound},
	{Err: ErrUserNotFound, Status: http.StatusNotFound, Code: apperrors.CodeNotFound},
	{Err: ErrMemberNotFound, Status: http.StatusNotFound, Code: apperrors.CodeNotFound},
	{Err: ErrInviteNotFound, Status: http.StatusNotFound, Code: apperrors.CodeNotFound},
	{Err: ErrPermissionDenied, Status: http.StatusForbidden, Code: apperrors.CodePermissionDenied},
	{Err: ErrAlreadyMember, Status: http.StatusConflict, Code: apperrors.CodeAlreadyMember},
	{Err: ErrInvalidRole, Status: http.StatusBadRequest, Code: apperrors.CodeInvalidRole},
	{Err: ErrInviteMismatch, Status: http.StatusForbidden, Code: apperrors.CodeInviteMismatch},
	{Err: ErrInviteExpired, Status: http.StatusGone, Code: apperrors.CodeInviteExpired},
	{Err: ErrRateLimited, Status: http.StatusTooManyRequests, Code: apperrors.CodeRateLimited},
	{Err: ErrInvalidEmail, Status: http.StatusBadRequest, Code: apperrors.CodeInvalidArgument},
	{Err: ErrInvalidAccountName, Status: http.StatusBadRequest, Code: apperrors.CodeInvalidArgument},
	{Err: ErrNotificationFailed, Status: http.StatusInternalServerError, Code: apperrors.CodeInternal, Message: "invite saved but the email could not be sent"},
}

func (h *Handler) handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, errorMappings)
}
