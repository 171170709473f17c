package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storybook/internal/session"
	"github.com/mrlokans/storybook/internal/vault"
)

// CredentialController manages the Gemini API key kept in the session.
// The key itself is never sent back to the browser.
type CredentialController struct {
	sessions *session.Manager
}

func NewCredentialController(sessions *session.Manager) *CredentialController {
	return &CredentialController{sessions: sessions}
}

type CredentialStatus struct {
	Configured bool `json:"configured"`
}

func (cc *CredentialController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, CredentialStatus{Configured: cc.sessions.Vault(c.Request.Context()).Has()})
}

type credentialRequest struct {
	APIKey string `json:"api_key" form:"api_key"`
}

func (cc *CredentialController) Save(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, CodeValidation, "invalid request body")
		return
	}

	key, err := vault.ValidateCredential(req.APIKey)
	if err != nil {
		respondCredentialError(c, err)
		return
	}

	ctx := c.Request.Context()
	// The token changes whenever a credential is stored
	if err := cc.sessions.RenewToken(ctx); err != nil {
		respondInternalError(c, err, "renew session token")
		return
	}
	cc.sessions.Vault(ctx).Save(key)
	// Generation requests only read the scope
	cc.sessions.Scope(ctx)

	c.JSON(http.StatusOK, CredentialStatus{Configured: true})
}

func (cc *CredentialController) Clear(c *gin.Context) {
	cc.sessions.Vault(c.Request.Context()).Clear()
	c.JSON(http.StatusOK, CredentialStatus{Configured: false})
}
