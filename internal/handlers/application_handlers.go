package handlers

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/store"
)

// ApplyToJob handles POST /api/jobs/:id/apply (student only). The CV
// comes either as a fresh PDF upload or from the student's saved
// profile CV.
func (h *Handlers) ApplyToJob(c *gin.Context) {
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
	if job.Status != models.JobStatusActive {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "This job is no longer accepting applications"})
		return
	}

	// 2. --- Block Duplicate Applications ---
	applied, err := h.Store.ListAppliedJobIDs(ctx, sessionEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}
	for _, id := range applied {
		if id == jobID {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "You have already applied to this job"})
			return
		}
	}

	// 3. --- Resolve the CV ---
	var cvURL string
	if file, err := c.FormFile("cv"); err == nil {
		if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "CV must be a PDF file"})
			return
		}
		cvURL, err = h.saveUpload(c, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save CV"})
			return
		}
	} else {
		user, err := h.Store.GetUserByEmail(ctx, sessionEmail)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
			return
		}
		if user.CVFile == nil || *user.CVFile == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please upload a CV or add one to your profile"})
			return
		}
		cvURL = *user.CVFile
	}

	// 4. --- Record & Notify Both Sides ---
	app := &models.Application{JobID: jobID, StudentEmail: sessionEmail, CVFile: cvURL}
	if _, err := h.Store.CreateApplication(ctx, app); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to submit application"})
		return
	}

	h.Notifier.Send(ctx, sessionEmail,
		fmt.Sprintf("Application sent for %q at %s.", job.JobTitle, job.CompanyName), models.NotificationSuccess)
	h.Notifier.Send(ctx, job.EmployerEmail,
		fmt.Sprintf("New application received for %q.", job.JobTitle), models.NotificationInfo)
	h.Notifier.SendEmail(job.EmployerEmail, "New Job Application",
		fmt.Sprintf("<p>A student has applied for your job posting <b>%s</b>. Log in to review their CV.</p>", job.JobTitle))

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Application submitted successfully"})
}

// MyApplications handles GET /api/my-applications (student only).
// Returns the job ids the student applied to.
func (h *Handlers) MyApplications(c *gin.Context) {
	sessionEmail := c.GetString("sessionEmail")
	ids, err := h.Store.ListAppliedJobIDs(c.Request.Context(), sessionEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load applications"})
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appliedJobIds": ids})
}

// EmployerApplications handles GET /api/applications (employer only).
func (h *Handlers) EmployerApplications(c *gin.Context) {
	sessionEmail := c.GetString("sessionEmail")
	apps, err := h.Store.ListApplicationsForEmployer(c.Request.Context(), sessionEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load applications"})
		return
	}
	if apps == nil {
		apps = []*models.Application{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "applications": apps})
}

// DownloadCVs handles GET /api/applications/download-cvs (employer
// only). Streams every applicant CV as one zip archive.
func (h *Handlers) DownloadCVs(c *gin.Context) {
	sessionEmail := c.GetString("sessionEmail")

	refs, err := h.Store.ListCVsForEmployer(c.Request.Context(), sessionEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load CVs"})
		return
	}
	if len(refs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No CVs to download"})
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="applicant-cvs.zip"`)

	zw := zip.NewWriter(c.Writer)
	defer zw.Close()

	for i, ref := range refs {
		// CV urls point into our own uploads folder; anything else is
		// skipped rather than fetched.
		idx := strings.Index(ref.CVFile, "/uploads/")
		if idx < 0 {
			continue
		}
		localPath := filepath.Join("./uploads", filepath.Base(ref.CVFile[idx:]))

		f, err := os.Open(localPath)
		if err != nil {
			h.Logger.Warn("cv file missing from uploads", "path", localPath, "error", err)
			continue
		}

		entryName := fmt.Sprintf("%s_%s_%d%s", ref.FirstName, ref.LastName, i+1, filepath.Ext(localPath))
		w, err := zw.Create(entryName)
		if err != nil {
			f.Close()
			return
		}
		if _, err := io.Copy(w, f); err != nil {
			f.Close()
			return
		}
		f.Close()
	}
}
