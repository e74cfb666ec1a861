package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"spacos/internal/models"
	"spacos/internal/services"
)

// AdminHandler handles organization administration: team, billing,
// integrations and API keys.
type AdminHandler struct {
	teamService        services.TeamServicer
	billingService     services.BillingServicer
	integrationService services.IntegrationServicer
	apiKeyService      services.APIKeyServicer
	auditService       services.AuditServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	teamService services.TeamServicer,
	billingService services.BillingServicer,
	integrationService services.IntegrationServicer,
	apiKeyService services.APIKeyServicer,
	auditService services.AuditServicer,
) *AdminHandler {
	return &AdminHandler{
		teamService:        teamService,
		billingService:     billingService,
		integrationService: integrationService,
		apiKeyService:      apiKeyService,
		auditService:       auditService,
	}
}

// AddMemberRequest represents the request payload for adding a team member
type AddMemberRequest struct {
	Email string      `json:"email" binding:"required,email,max=255"`
	Role  models.Role `json:"role" binding:"required,role"`
	Title string      `json:"title" binding:"max=100"`
}

// UpdateMemberRoleRequest represents the request payload for a role change
type UpdateMemberRoleRequest struct {
	Role models.Role `json:"role" binding:"required,role"`
}

// UpdateBillingRequest represents the request payload for a plan change
type UpdateBillingRequest struct {
	Plan         *models.BillingPlan `json:"plan" binding:"omitempty,billing_plan"`
	Seats        *int                `json:"seats" binding:"omitempty,gte=1,lte=10000"`
	BillingEmail *string             `json:"billing_email" binding:"omitempty,max=255"`
}

// SaveIntegrationRequest represents the request payload for provider settings
type SaveIntegrationRequest struct {
	Enabled  bool            `json:"enabled"`
	Settings json.RawMessage `json:"settings" swaggertype:"object"`
}

// CreateAPIKeyRequest represents the request payload for a new API key
type CreateAPIKeyRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// ListMembers handles listing the organization's members
// @Summary     List team members
// @Tags        team
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.TeamMember "Members"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /team [get]
func (h *AdminHandler) ListMembers(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	members, err := h.teamService.ListMembers(c.Request.Context(), ac)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// AddMember handles adding an existing user to the organization
// @Summary     Add team member
// @Description Add a registered user by email. Requires admin; granting owner requires owner.
// @Tags        team
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddMemberRequest true "Member details"
// @Success     201 {object} models.TeamMember "Member added"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     402 {object} ErrorResponse "Seat limit reached"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     409 {object} ErrorResponse "Already a member"
// @Router      /team [post]
func (h *AdminHandler) AddMember(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	member, err := h.teamService.AddMember(c.Request.Context(), ac, req.Email, req.Role, req.Title)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "ADD_MEMBER", "team_member", member.ID, c.ClientIP(),
		map[string]interface{}{"email": req.Email, "role": req.Role})

	c.JSON(http.StatusCreated, gin.H{"member": member})
}

// UpdateMemberRole handles a member role change
// @Summary     Change member role
// @Tags        team
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Member ID"
// @Param       request body UpdateMemberRoleRequest true "New role"
// @Success     200 {object} models.TeamMember "Updated member"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Member not found"
// @Failure     409 {object} ErrorResponse "Last owner"
// @Router      /team/{id} [put]
func (h *AdminHandler) UpdateMemberRole(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	id := c.Param("id")
	member, err := h.teamService.UpdateMemberRole(c.Request.Context(), ac, id, req.Role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "UPDATE_MEMBER_ROLE", "team_member", id, c.ClientIP(),
		map[string]interface{}{"role": req.Role})

	c.JSON(http.StatusOK, gin.H{"member": member})
}

// RemoveMember handles removing a member from the organization
// @Summary     Remove team member
// @Tags        team
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Member ID"
// @Success     200 {object} map[string]string "Member removed"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Member not found"
// @Failure     409 {object} ErrorResponse "Last owner"
// @Router      /team/{id} [delete]
func (h *AdminHandler) RemoveMember(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.teamService.RemoveMember(c.Request.Context(), ac, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "REMOVE_MEMBER", "team_member", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

// GetBilling handles the retrieval of the billing account
// @Summary     Get billing account
// @Tags        billing
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.BillingAccount "Billing account"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Billing account not found"
// @Router      /billing [get]
func (h *AdminHandler) GetBilling(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.billingService.GetBilling(c.Request.Context(), ac)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"billing": account})
}

// UpdateBilling handles a plan, seat or billing email change
// @Summary     Update billing account
// @Tags        billing
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateBillingRequest true "Billing changes"
// @Success     200 {object} models.BillingAccount "Updated billing account"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Billing account not found"
// @Router      /billing [put]
func (h *AdminHandler) UpdateBilling(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	account, err := h.billingService.UpdateBilling(c.Request.Context(), ac, services.BillingUpdate{
		Plan:         req.Plan,
		Seats:        req.Seats,
		BillingEmail: req.BillingEmail,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "UPDATE_BILLING", "billing_account", account.ID, c.ClientIP(),
		map[string]interface{}{"plan": account.Plan, "seats": account.Seats})

	c.JSON(http.StatusOK, gin.H{"billing": account})
}

// ListIntegrations handles listing configured integrations
// @Summary     List integrations
// @Tags        integrations
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.Integration "Integrations"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /integrations [get]
func (h *AdminHandler) ListIntegrations(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	integrations, err := h.integrationService.ListIntegrations(c.Request.Context(), ac)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"integrations": integrations})
}

// SaveIntegration handles creating or replacing a provider's settings
// @Summary     Save integration
// @Tags        integrations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       provider path string                 true "Provider name"
// @Param       request  body SaveIntegrationRequest true "Settings"
// @Success     200 {object} models.Integration "Saved integration"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /integrations/{provider} [put]
func (h *AdminHandler) SaveIntegration(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SaveIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	provider := c.Param("provider")
	integration, err := h.integrationService.SaveIntegration(c.Request.Context(), ac, provider, req.Enabled, req.Settings)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "SAVE_INTEGRATION", "integration", integration.Provider, c.ClientIP(),
		map[string]interface{}{"enabled": req.Enabled})

	c.JSON(http.StatusOK, gin.H{"integration": integration})
}

// DeleteIntegration handles removing a provider's settings
// @Summary     Delete integration
// @Tags        integrations
// @Produce     json
// @Security    BearerAuth
// @Param       provider path string true "Provider name"
// @Success     200 {object} map[string]string "Integration deleted"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Integration not found"
// @Router      /integrations/{provider} [delete]
func (h *AdminHandler) DeleteIntegration(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	provider := c.Param("provider")
	if err := h.integrationService.DeleteIntegration(c.Request.Context(), ac, provider); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "DELETE_INTEGRATION", "integration", provider, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Integration deleted successfully"})
}

// ListAPIKeys handles listing the organization's API keys
// @Summary     List API keys
// @Description Keys are listed with their prefix only. Secrets are never returned.
// @Tags        api-keys
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.APIKey "API keys"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /api-keys [get]
func (h *AdminHandler) ListAPIKeys(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	keys, err := h.apiKeyService.ListKeys(c.Request.Context(), ac)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"api_keys": keys})
}

// CreateAPIKey handles issuing a new API key
// @Summary     Create API key
// @Description Issue a key. The secret is returned once and cannot be retrieved again.
// @Tags        api-keys
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAPIKeyRequest true "Key details"
// @Success     201 {object} map[string]interface{} "Key and secret"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /api-keys [post]
func (h *AdminHandler) CreateAPIKey(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	key, secret, err := h.apiKeyService.CreateKey(c.Request.Context(), ac, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "CREATE_API_KEY", "api_key", key.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "prefix": key.Prefix})

	c.JSON(http.StatusCreated, gin.H{"api_key": key, "secret": secret})
}

// RevokeAPIKey handles disabling an API key
// @Summary     Revoke API key
// @Tags        api-keys
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "API key ID"
// @Success     200 {object} map[string]string "Key revoked"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "API key not found"
// @Router      /api-keys/{id} [delete]
func (h *AdminHandler) RevokeAPIKey(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.apiKeyService.RevokeKey(c.Request.Context(), ac, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "REVOKE_API_KEY", "api_key", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "API key revoked successfully"})
}
