package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/store"
)

// GetProfile handles GET /api/profile. The session role decides which
// table the profile comes from.
func (h *Handlers) GetProfile(c *gin.Context) {
	sessionEmail := c.GetString("sessionEmail")
	sessionRole := c.GetString("sessionRole")
	ctx := c.Request.Context()

	if sessionRole == "employer" {
		emp, err := h.Store.GetEmployerByEmail(ctx, sessionEmail)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Account not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "employer": emp})
		return
	}

	user, err := h.Store.GetUserByEmail(ctx, sessionEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// UpdateStudentProfile handles PUT /api/profile (student only,
// multipart form with optional photo and CV uploads).
func (h *Handlers) UpdateStudentProfile(c *gin.Context) {
	// 1. --- Bind & Validate Form ---
	var input struct {
		FirstName      string `form:"firstName" binding:"required"`
		LastName       string `form:"lastName" binding:"required"`
		Phone          string `form:"phone" binding:"required"`
		DOB            string `form:"dob" binding:"required"`
		City           string `form:"city" binding:"required"`
		EducationLevel string `form:"educationLevel"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid profile details: " + err.Error()})
		return
	}

	if !phonePattern.MatchString(input.Phone) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Phone number must be in +94 format"})
		return
	}

	// 2. --- Save Optional Uploads ---
	var profilePic, cvFile *string
	if file, err := c.FormFile("profilePic"); err == nil {
		url, err := h.saveUpload(c, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save photo"})
			return
		}
		profilePic = &url
	}
	if file, err := c.FormFile("cv"); err == nil {
		if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "CV must be a PDF file"})
			return
		}
		url, err := h.saveUpload(c, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save CV"})
			return
		}
		cvFile = &url
	}

	// 3. --- Persist & Return the Fresh Record ---
	sessionEmail := c.GetString("sessionEmail")
	ctx := c.Request.Context()

	if err := h.Store.UpdateUserProfile(ctx, sessionEmail,
		input.FirstName, input.LastName, input.Phone, input.DOB, input.City,
		input.EducationLevel, profilePic, cvFile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update profile"})
		return
	}

	user, err := h.Store.GetUserByEmail(ctx, sessionEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated", "user": user})
}

// UpdateEmployerProfile handles PUT /api/employer-profile (employer
// only, multipart form with an optional logo upload).
func (h *Handlers) UpdateEmployerProfile(c *gin.Context) {
	// 1. --- Bind & Validate Form ---
	var input struct {
		Address string `form:"address" binding:"required"`
		City    string `form:"city" binding:"required"`
		Phone   string `form:"phone" binding:"required"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid profile details: " + err.Error()})
		return
	}

	if !phonePattern.MatchString(input.Phone) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Phone number must be in +94 format"})
		return
	}

	// 2. --- Save Optional Logo ---
	var logo *string
	if file, err := c.FormFile("logo"); err == nil {
		url, err := h.saveUpload(c, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save logo"})
			return
		}
		logo = &url
	}

	// 3. --- Persist & Return the Fresh Record ---
	sessionEmail := c.GetString("sessionEmail")
	ctx := c.Request.Context()

	if err := h.Store.UpdateEmployerProfile(ctx, sessionEmail,
		input.Address, input.City, input.Phone, logo); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update profile"})
		return
	}

	emp, err := h.Store.GetEmployerByEmail(ctx, sessionEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated", "employer": emp})
}

// DeletePhoto handles DELETE /api/profile/photo (student only).
func (h *Handlers) DeletePhoto(c *gin.Context) {
	sessionEmail := c.GetString("sessionEmail")
	if err := h.Store.ClearUserPhoto(c.Request.Context(), sessionEmail); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to remove photo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Photo removed"})
}

// DeleteCV handles DELETE /api/profile/cv (student only).
func (h *Handlers) DeleteCV(c *gin.Context) {
	sessionEmail := c.GetString("sessionEmail")
	if err := h.Store.ClearUserCV(c.Request.Context(), sessionEmail); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to remove CV"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "CV removed"})
}
