package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mobile-auth/internal/service"
)

type updateProfileRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) getProfile(c *gin.Context) {
	user := mustUser(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "user": userToResponse(user)})
}

func (h *Handler) updateProfile(c *gin.Context) {
	current := mustUser(c)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), current.ID, service.UpdateProfileInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"user":    userToResponse(user),
	})
}

func (h *Handler) changePassword(c *gin.Context) {
	current := mustUser(c)

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), current.ID, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.WithField("user_id", current.ID).Info("password changed")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated successfully"})
}
