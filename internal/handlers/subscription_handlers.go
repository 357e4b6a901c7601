package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/plan"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/store"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/subscription"
)

// GetPlans handles GET /api/plans (public).
func (h *Handlers) GetPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "plans": plan.All()})
}

// GetSubscription handles GET /api/subscription (employer only). The
// remaining post count is derived live; boosts come from the stored
// counter.
func (h *Handlers) GetSubscription(c *gin.Context) {
	sessionEmail := c.GetString("sessionEmail")
	ctx := c.Request.Context()

	// 1. --- Load the Employer ---
	emp, err := h.Store.GetEmployerByEmail(ctx, sessionEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Employer account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}

	// 2. --- Derive Remaining Capacity ---
	remaining, err := h.Quota.RemainingJobPosts(ctx, sessionEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to compute quota"})
		return
	}

	// 3. --- Attach Any Pending Payment ---
	var pending *models.SubscriptionPayment
	if p, err := h.Store.GetPendingPayment(ctx, sessionEmail); err == nil {
		pending = p
	} else if !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}

	entitlement := plan.Lookup(emp.CurrentPlan)
	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"currentPlan":           entitlement.ID,
		"planName":              entitlement.Name,
		"jobPostsRemaining":     remaining,
		"boostsRemaining":       emp.BoostsRemaining,
		"subscriptionExpiresAt": emp.SubscriptionExpiresAt,
		"pendingPayment":        pending,
	})
}

// SubmitPayment handles POST /api/subscription/payment (employer only,
// multipart form with the bank transfer receipt attached).
func (h *Handlers) SubmitPayment(c *gin.Context) {
	// 1. --- Bind & Validate Form ---
	var input struct {
		PlanType string  `form:"planType" binding:"required"`
		Amount   float64 `form:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Plan and amount are required"})
		return
	}

	// 2. --- Save the Receipt Upload ---
	file, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A payment receipt is required"})
		return
	}
	receiptURL, err := h.saveUpload(c, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save receipt"})
		return
	}

	sessionEmail := c.GetString("sessionEmail")

	// 3. --- Record the Claim ---
	payment, err := h.Lifecycle.SubmitPayment(c.Request.Context(), sessionEmail, input.PlanType, input.Amount, receiptURL)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrUnknownPlan):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Unknown subscription plan"})
		case errors.Is(err, subscription.ErrDuplicatePending):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "You already have a payment awaiting review"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Employer account not found"})
		default:
			h.Logger.Error("submit payment failed", "employer", sessionEmail, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to submit payment"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Payment submitted. Your plan will be activated once the payment is verified.",
		"payment": payment,
	})
}

// ListPayments handles GET /api/admin/payments (admin only).
func (h *Handlers) ListPayments(c *gin.Context) {
	payments, err := h.Store.ListPayments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load payments"})
		return
	}
	if payments == nil {
		payments = []*models.SubscriptionPayment{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "payments": payments})
}

// ApprovePayment handles POST /api/admin/payments/:id/approve.
func (h *Handlers) ApprovePayment(c *gin.Context) {
	paymentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid payment ID"})
		return
	}

	reviewedBy := c.GetString("sessionEmail")

	if err := h.Lifecycle.ApprovePayment(c.Request.Context(), paymentID, reviewedBy); err != nil {
		switch {
		case errors.Is(err, subscription.ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Payment not found"})
		case errors.Is(err, subscription.ErrAlreadyReviewed):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "This payment has already been processed"})
		default:
			h.Logger.Error("approve payment failed", "payment", paymentID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to approve payment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment approved and subscription activated"})
}

// DeclinePayment handles POST /api/admin/payments/:id/decline.
func (h *Handlers) DeclinePayment(c *gin.Context) {
	paymentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid payment ID"})
		return
	}

	var input struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A decline reason is required"})
		return
	}

	reviewedBy := c.GetString("sessionEmail")

	if err := h.Lifecycle.DeclinePayment(c.Request.Context(), paymentID, reviewedBy, input.Reason); err != nil {
		switch {
		case errors.Is(err, subscription.ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Payment not found"})
		case errors.Is(err, subscription.ErrAlreadyReviewed):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "This payment has already been processed"})
		default:
			h.Logger.Error("decline payment failed", "payment", paymentID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decline payment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment declined"})
}
