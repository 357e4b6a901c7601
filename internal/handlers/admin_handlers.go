package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/store"
)

// AdminData handles GET /api/admin/data: the single payload backing the
// admin dashboard.
func (h *Handlers) AdminData(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.Store.GetAdminStats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load stats"})
		return
	}

	students, err := h.Store.ListUsers(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load students"})
		return
	}

	pending, err := h.Store.ListEmployersByVerification(ctx, models.VerificationPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load employers"})
		return
	}
	verified, err := h.Store.ListEmployersByVerification(ctx, models.VerificationVerified)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load employers"})
		return
	}
	declined, err := h.Store.ListEmployersByVerification(ctx, models.VerificationDeclined)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load employers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"stats":    stats,
		"students": students,
		"employers": gin.H{
			"pending":  pending,
			"verified": verified,
			"declined": declined,
		},
	})
}

// VerifyEmployer handles POST /api/admin/employers/:id/verify. The
// action field decides approval or decline.
func (h *Handlers) VerifyEmployer(c *gin.Context) {
	// 1. --- Parse & Validate ---
	employerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid employer ID"})
		return
	}

	var input struct {
		Action  string `json:"action" binding:"required,oneof=approve decline"`
		Reason  string `json:"reason"`
		Methods string `json:"methods"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Action must be 'approve' or 'decline'"})
		return
	}
	if input.Action == "decline" && input.Reason == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A decline reason is required"})
		return
	}

	ctx := c.Request.Context()
	reviewedBy := c.GetString("sessionEmail")

	emp, err := h.Store.GetEmployerByID(ctx, employerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Employer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}

	// 2. --- Apply the Decision ---
	if input.Action == "approve" {
		if err := h.Store.VerifyEmployer(ctx, employerID, reviewedBy, input.Methods); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to verify employer"})
			return
		}
		h.Notifier.Send(ctx, emp.Email, "Your account has been verified! You can now post jobs.", models.NotificationSuccess)
		h.Notifier.SendEmail(emp.Email, "Account Verified",
			fmt.Sprintf("<p>Congratulations %s, your StudentWorkHub account has been verified.</p>", emp.CompanyName))
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Employer verified"})
		return
	}

	if err := h.Store.DeclineEmployer(ctx, employerID, reviewedBy, input.Reason); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decline employer"})
		return
	}
	h.Notifier.Send(ctx, emp.Email, fmt.Sprintf("Account verification declined: %s", input.Reason), models.NotificationError)
	h.Notifier.SendEmail(emp.Email, "Account Verification Declined",
		fmt.Sprintf("<p>Your account verification was declined. Reason: %s</p>", input.Reason))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Employer declined"})
}

// EmployerDetails handles GET /api/admin/employers/:id: the full record
// plus the employer's jobs for the review drawer.
func (h *Handlers) EmployerDetails(c *gin.Context) {
	employerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid employer ID"})
		return
	}

	ctx := c.Request.Context()

	emp, err := h.Store.GetEmployerByID(ctx, employerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Employer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}

	jobs, err := h.Store.ListJobsByEmployer(ctx, emp.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load jobs"})
		return
	}
	if jobs == nil {
		jobs = []*models.Job{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "employer": emp, "jobs": jobs})
}

// SuspendStudent handles POST /api/admin/students/:id/suspend
// (multipart form, optional proof attachments). The account is deleted
// and the email blocked from registering again.
func (h *Handlers) SuspendStudent(c *gin.Context) {
	// 1. --- Parse & Validate ---
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid student ID"})
		return
	}

	var input struct {
		Reason string `form:"reason" binding:"required"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A suspension reason is required"})
		return
	}

	// 2. --- Save Proof Attachments ---
	proofFiles := "[]"
	if form, err := c.MultipartForm(); err == nil {
		if files := form.File["proofFiles"]; len(files) > 0 {
			urls, err := h.saveUploads(c, files)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save proof files"})
				return
			}
			encoded, _ := json.Marshal(urls)
			proofFiles = string(encoded)
		}
	}

	// 3. --- Suspend & Notify ---
	user, err := h.Store.SuspendUser(c.Request.Context(), userID, input.Reason, proofFiles)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to suspend student"})
		return
	}

	h.Notifier.SendEmail(user.Email, "Account Suspended",
		fmt.Sprintf("<p>Your StudentWorkHub account has been suspended. Reason: %s</p>", input.Reason))

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Student suspended"})
}

// ListSuspended handles GET /api/admin/suspended.
func (h *Handlers) ListSuspended(c *gin.Context) {
	suspended, err := h.Store.ListSuspended(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load suspended users"})
		return
	}
	if suspended == nil {
		suspended = []*models.SuspendedUser{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "suspended": suspended})
}

// DeleteAccount handles DELETE /api/admin/users/:type/:id. Deleting an
// employer also removes their jobs.
func (h *Handlers) DeleteAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid account ID"})
		return
	}

	ctx := c.Request.Context()

	switch c.Param("type") {
	case "student":
		err = h.Store.DeleteUser(ctx, id)
	case "employer":
		err = h.Store.DeleteEmployer(ctx, id)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Account type must be 'student' or 'employer'"})
		return
	}

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account deleted"})
}
