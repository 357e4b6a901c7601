package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/posting"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/store"
)

// PostJob handles POST /api/jobs (multipart form, employer only).
func (h *Handlers) PostJob(c *gin.Context) {
	// 1. --- Bind & Validate Form ---
	var input struct {
		JobTitle     string  `form:"jobTitle" binding:"required"`
		Location     string  `form:"location" binding:"required"`
		Schedule     string  `form:"schedule" binding:"required"`
		HoursPerDay  int     `form:"hoursPerDay" binding:"required,min=1,max=6"`
		PayAmount    float64 `form:"payAmount" binding:"required,gt=0"`
		PayFrequency string  `form:"payFrequency" binding:"required"`
		Description  string  `form:"description" binding:"required"`
		Category     string  `form:"category" binding:"required"`
		Premium      bool    `form:"premium"`
		Deadline     string  `form:"deadline"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid job details: " + err.Error()})
		return
	}

	sessionEmail := c.GetString("sessionEmail")
	ctx := c.Request.Context()

	// 2. --- Require a Verified Employer ---
	emp, err := h.Store.GetEmployerByEmail(ctx, sessionEmail)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Employer account not found"})
		return
	}
	if emp.VerificationStatus != models.VerificationVerified {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Your account must be verified before posting jobs"})
		return
	}

	// 3. --- Save Job Images ---
	jobImages := "[]"
	if form, err := c.MultipartForm(); err == nil {
		if files := form.File["jobImages"]; len(files) > 0 {
			urls, err := h.saveUploads(c, files)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save job images"})
				return
			}
			encoded, _ := json.Marshal(urls)
			jobImages = string(encoded)
		}
	}

	var deadline time.Time
	if input.Deadline != "" {
		if parsed, err := time.Parse("2006-01-02", input.Deadline); err == nil {
			deadline = parsed
		}
	}

	// 4. --- Reserve Capacity & Create ---
	job, err := h.Guard.PostJob(ctx, posting.PostJobRequest{
		EmployerEmail: sessionEmail,
		CompanyName:   emp.CompanyName,
		JobTitle:      input.JobTitle,
		Location:      input.Location,
		Schedule:      input.Schedule,
		HoursPerDay:   input.HoursPerDay,
		PayAmount:     input.PayAmount,
		PayFrequency:  input.PayFrequency,
		Description:   input.Description,
		Category:      input.Category,
		Premium:       input.Premium,
		Deadline:      deadline,
		JobImages:     jobImages,
	})
	if err != nil {
		switch {
		case errors.Is(err, posting.ErrQuotaExceeded):
			c.JSON(http.StatusForbidden, gin.H{
				"success":      false,
				"message":      "You have reached the job post limit for your plan. Upgrade to post more jobs.",
				"limitReached": true,
			})
		case errors.Is(err, posting.ErrNoBoostsRemaining):
			c.JSON(http.StatusForbidden, gin.H{
				"success":           false,
				"message":           "You have no boosts remaining. Upgrade your plan to boost more jobs.",
				"boostLimitReached": true,
			})
		case errors.Is(err, posting.ErrEmployerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Employer account not found"})
		default:
			h.Logger.Error("post job failed", "employer", sessionEmail, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to post job"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Job posted successfully", "job": job})
}

// ListJobs handles GET /api/jobs (public browse listing).
func (h *Handlers) ListJobs(c *gin.Context) {
	jobs, err := h.Store.ListJobs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load jobs"})
		return
	}
	if jobs == nil {
		jobs = []*models.Job{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "jobs": jobs})
}

// MyJobs handles GET /api/my-jobs (employer only).
func (h *Handlers) MyJobs(c *gin.Context) {
	sessionEmail := c.GetString("sessionEmail")
	jobs, err := h.Store.ListJobsByEmployer(c.Request.Context(), sessionEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load jobs"})
		return
	}
	if jobs == nil {
		jobs = []*models.Job{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "jobs": jobs})
}

// UpdateJob handles PUT /api/jobs/:id (employer only, own jobs).
func (h *Handlers) UpdateJob(c *gin.Context) {
	// 1. --- Parse ID & Load the Job ---
	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid job ID"})
		return
	}

	sessionEmail := c.GetString("sessionEmail")
	ctx := c.Request.Context()

	job, err := h.Store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}
	if job.EmployerEmail != sessionEmail {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You can only edit your own jobs"})
		return
	}

	// 2. --- Bind & Validate Form ---
	var input struct {
		JobTitle     string  `form:"jobTitle" binding:"required"`
		Location     string  `form:"location" binding:"required"`
		Schedule     string  `form:"schedule" binding:"required"`
		HoursPerDay  int     `form:"hoursPerDay" binding:"required,min=1,max=6"`
		PayAmount    float64 `form:"payAmount" binding:"required,gt=0"`
		PayFrequency string  `form:"payFrequency" binding:"required"`
		Description  string  `form:"description" binding:"required"`
		Category     string  `form:"category" binding:"required"`
		Status       string  `form:"status"`
		Deadline     string  `form:"deadline"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid job details: " + err.Error()})
		return
	}

	job.JobTitle = input.JobTitle
	job.Location = input.Location
	job.Schedule = input.Schedule
	job.HoursPerDay = input.HoursPerDay
	job.PayAmount = input.PayAmount
	job.PayFrequency = input.PayFrequency
	job.Description = input.Description
	job.Category = input.Category
	if input.Status == models.JobStatusActive || input.Status == models.JobStatusClosed {
		job.Status = input.Status
	}
	if input.Deadline != "" {
		if parsed, err := time.Parse("2006-01-02", input.Deadline); err == nil {
			job.Deadline = parsed
		}
	}

	// 3. --- Replace Images If New Ones Were Sent ---
	replaceImages := false
	if form, err := c.MultipartForm(); err == nil {
		if files := form.File["jobImages"]; len(files) > 0 {
			urls, err := h.saveUploads(c, files)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save job images"})
				return
			}
			encoded, _ := json.Marshal(urls)
			job.JobImages = string(encoded)
			replaceImages = true
		}
	}

	// 4. --- Persist ---
	if err := h.Store.UpdateJob(ctx, job, replaceImages); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job updated successfully", "job": job})
}

// DeleteJob handles DELETE /api/jobs/:id (employer only, own jobs).
func (h *Handlers) DeleteJob(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid job ID"})
		return
	}

	sessionEmail := c.GetString("sessionEmail")
	ctx := c.Request.Context()

	job, err := h.Store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}
	if job.EmployerEmail != sessionEmail {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You can only delete your own jobs"})
		return
	}

	if err := h.Store.DeleteJob(ctx, jobID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job deleted successfully"})
}

// PromoteJob handles POST /api/jobs/:id/promote (employer only).
func (h *Handlers) PromoteJob(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid job ID"})
		return
	}

	sessionEmail := c.GetString("sessionEmail")

	if err := h.Guard.PromoteJob(c.Request.Context(), jobID, sessionEmail); err != nil {
		switch {
		case errors.Is(err, posting.ErrJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Job not found"})
		case errors.Is(err, posting.ErrAlreadyPromoted):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "This job is already boosted"})
		case errors.Is(err, posting.ErrNoBoostsRemaining):
			c.JSON(http.StatusForbidden, gin.H{
				"success":           false,
				"message":           "You have no boosts remaining. Upgrade your plan to boost more jobs.",
				"boostLimitReached": true,
			})
		case errors.Is(err, posting.ErrEmployerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Employer account not found"})
		default:
			h.Logger.Error("promote job failed", "employer", sessionEmail, "job", jobID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to boost job"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job boosted successfully"})
}
