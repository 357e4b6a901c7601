package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/auth"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/store"
)

// otpResendInterval is the minimum gap between two OTP emails to the
// same address.
const otpResendInterval = 3 * time.Minute

// otpValidity is how long a code stays usable after it is issued.
const otpValidity = 10 * time.Minute

// RegisterStudent handles POST /api/register
func (h *Handlers) RegisterStudent(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input struct {
		FirstName string `json:"firstName" binding:"required"`
		LastName  string `json:"lastName" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Phone     string `json:"phone" binding:"required"`
		DOB       string `json:"dob" binding:"required"`
		City      string `json:"city" binding:"required"`
		Password  string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "All fields are required: " + err.Error()})
		return
	}

	if !phonePattern.MatchString(input.Phone) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Phone number must be in +94 format"})
		return
	}

	ctx := c.Request.Context()

	// 2. --- Block Suspended Emails ---
	suspended, err := h.Store.IsSuspended(ctx, input.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}
	if suspended {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "This email has been suspended and cannot register again"})
		return
	}

	// 3. --- Handle Existing Accounts ---
	// A verified account blocks the email. A half-registered row that
	// never confirmed its OTP is replaced so the user can retry.
	accounts := h.Store.Accounts(store.RoleStudent)
	if state, err := accounts.GetOTPState(ctx, input.Email); err == nil {
		if state.Verified {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "An account with this email already exists"})
			return
		}
		if err := accounts.DeleteUnverified(ctx, input.Email); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
			return
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}

	// 4. --- Hash Password & Create User ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to secure password"})
		return
	}

	otp := generateOTP()
	now := time.Now()
	user := &models.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Phone:        input.Phone,
		DOB:          input.DOB,
		City:         input.City,
		PasswordHash: password.Hash,
		OTPCode:      &otp,
		OTPCreatedAt: &now,
	}
	if _, err := h.Store.CreateUser(ctx, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create account"})
		return
	}

	// 5. --- Send OTP Email ---
	h.Notifier.SendEmail(input.Email, "Verify your StudentWorkHub account",
		fmt.Sprintf("<p>Hi %s,</p><p>Your verification code is <b>%s</b>. It expires in 10 minutes.</p>", input.FirstName, otp))

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Registration successful. Please verify your email.",
		"requireOtp": true,
	})
}

// RegisterEmployer handles POST /api/register-employer (multipart form,
// BR certificate attached).
func (h *Handlers) RegisterEmployer(c *gin.Context) {
	// 1. --- Bind & Validate Form ---
	var input struct {
		CompanyName string `form:"companyName" binding:"required"`
		BRNumber    string `form:"brNumber" binding:"required"`
		Industry    string `form:"industry" binding:"required"`
		Address     string `form:"address" binding:"required"`
		City        string `form:"city" binding:"required"`
		Email       string `form:"email" binding:"required,email"`
		Phone       string `form:"phone" binding:"required"`
		Password    string `form:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "All fields are required: " + err.Error()})
		return
	}

	if !phonePattern.MatchString(input.Phone) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Phone number must be in +94 format"})
		return
	}

	ctx := c.Request.Context()

	// 2. --- Block Suspended Emails ---
	suspended, err := h.Store.IsSuspended(ctx, input.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}
	if suspended {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "This email has been suspended and cannot register again"})
		return
	}

	// 3. --- Handle Existing Accounts ---
	accounts := h.Store.Accounts(store.RoleEmployer)
	if state, err := accounts.GetOTPState(ctx, input.Email); err == nil {
		if state.Verified {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "An account with this email already exists"})
			return
		}
		if err := accounts.DeleteUnverified(ctx, input.Email); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
			return
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}

	// 4. --- Save BR Certificate Upload ---
	var brCertificate *string
	if file, err := c.FormFile("brCertificate"); err == nil {
		url, err := h.saveUpload(c, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save BR certificate"})
			return
		}
		brCertificate = &url
	}

	// 5. --- Hash Password & Create Employer ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to secure password"})
		return
	}

	otp := generateOTP()
	now := time.Now()
	emp := &models.Employer{
		CompanyName:   input.CompanyName,
		BRNumber:      input.BRNumber,
		Industry:      input.Industry,
		Address:       input.Address,
		City:          input.City,
		Email:         input.Email,
		Phone:         input.Phone,
		PasswordHash:  password.Hash,
		BRCertificate: brCertificate,
		OTPCode:       &otp,
		OTPCreatedAt:  &now,
	}
	if _, err := h.Store.CreateEmployer(ctx, emp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create account"})
		return
	}

	// 6. --- Send OTP Email ---
	h.Notifier.SendEmail(input.Email, "Verify your StudentWorkHub account",
		fmt.Sprintf("<p>Hi %s,</p><p>Your verification code is <b>%s</b>. It expires in 10 minutes.</p>", input.CompanyName, otp))

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Registration successful. Please verify your email. Your account will be reviewed by our team.",
		"requireOtp": true,
	})
}

// VerifyOTP handles POST /api/verify-otp
func (h *Handlers) VerifyOTP(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required"`
		Role  string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email, OTP and role are required"})
		return
	}

	role, ok := store.ParseAccountRole(input.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid role"})
		return
	}

	ctx := c.Request.Context()
	accounts := h.Store.Accounts(role)

	// 2. --- Check Code & Expiry ---
	state, err := accounts.GetOTPState(ctx, input.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}
	if state.Verified {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email already verified"})
		return
	}
	if state.Code == nil || *state.Code != input.OTP {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid verification code"})
		return
	}
	if state.CreatedAt == nil || time.Since(*state.CreatedAt) > otpValidity {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Verification code has expired. Please request a new one."})
		return
	}

	// 3. --- Mark Verified ---
	if err := accounts.MarkEmailVerified(ctx, input.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email verified successfully. You can now log in."})
}

// ResendOTP handles POST /api/resend-otp
func (h *Handlers) ResendOTP(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input struct {
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and role are required"})
		return
	}

	role, ok := store.ParseAccountRole(input.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid role"})
		return
	}

	ctx := c.Request.Context()
	accounts := h.Store.Accounts(role)

	// 2. --- Throttle Resends ---
	state, err := accounts.GetOTPState(ctx, input.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}
	if state.Verified {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email is already verified"})
		return
	}
	if state.CreatedAt != nil && time.Since(*state.CreatedAt) < otpResendInterval {
		wait := otpResendInterval - time.Since(*state.CreatedAt)
		c.JSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"message": fmt.Sprintf("Please wait %d seconds before requesting a new code", int(wait.Seconds())),
		})
		return
	}

	// 3. --- Issue New Code ---
	otp := generateOTP()
	if err := accounts.SetOTP(ctx, input.Email, otp, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}

	h.Notifier.SendEmail(input.Email, "Your new verification code",
		fmt.Sprintf("<p>Your new verification code is <b>%s</b>. It expires in 10 minutes.</p>", otp))

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "A new verification code has been sent"})
}

// LoginStudent handles POST /api/login
func (h *Handlers) LoginStudent(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password are required"})
		return
	}

	ctx := c.Request.Context()

	// 2. --- Fetch & Check Credentials ---
	user, err := h.Store.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Authentication error"})
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
		return
	}

	// 3. --- Require Email Verification ---
	if !user.IsEmailVerified {
		c.JSON(http.StatusForbidden, gin.H{
			"success":    false,
			"message":    "Please verify your email before logging in",
			"requireOtp": true,
		})
		return
	}

	// 4. --- Issue Token ---
	token, err := auth.GenerateToken(user.Email, "student")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": user})
}

// LoginEmployer handles POST /api/login-employer
func (h *Handlers) LoginEmployer(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password are required"})
		return
	}

	ctx := c.Request.Context()

	// 2. --- Fetch & Check Credentials ---
	emp, err := h.Store.GetEmployerByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}

	password := models.Password{Hash: emp.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Authentication error"})
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
		return
	}

	// 3. --- Require Email Verification ---
	if !emp.IsEmailVerified {
		c.JSON(http.StatusForbidden, gin.H{
			"success":    false,
			"message":    "Please verify your email before logging in",
			"requireOtp": true,
		})
		return
	}

	// 4. --- Block Declined Accounts ---
	if emp.VerificationStatus == models.VerificationDeclined {
		reason := "Your account verification was declined"
		if emp.RejectionReason != nil {
			reason = fmt.Sprintf("Your account verification was declined: %s", *emp.RejectionReason)
		}
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": reason})
		return
	}

	// 5. --- Issue Token ---
	token, err := auth.GenerateToken(emp.Email, "employer")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "employer": emp})
}

// AdminLogin handles POST /api/admin/login. Admin credentials come from
// the environment, not the database.
func (h *Handlers) AdminLogin(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Username and password are required"})
		return
	}

	adminUser := os.Getenv("ADMIN_USERNAME")
	if adminUser == "" {
		adminUser = "admin"
	}
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminPass == "" {
		adminPass = "admin"
	}

	if input.Username != adminUser || input.Password != adminPass {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid admin credentials"})
		return
	}

	token, err := auth.GenerateToken(adminUser, "admin")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// UpdateEmail handles POST /api/update-email. The account must confirm
// the new address with a fresh OTP before it can log in again.
func (h *Handlers) UpdateEmail(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input struct {
		NewEmail string `json:"newEmail" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "New email, password and role are required"})
		return
	}

	role, ok := store.ParseAccountRole(input.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid role"})
		return
	}

	sessionEmail := c.GetString("sessionEmail")
	ctx := c.Request.Context()
	accounts := h.Store.Accounts(role)

	// 2. --- Re-authenticate ---
	hash, err := accounts.GetPasswordHash(ctx, sessionEmail)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Account not found"})
		return
	}
	password := models.Password{Hash: hash}
	match, err := password.Matches(input.Password)
	if err != nil || !match {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Incorrect password"})
		return
	}

	// 3. --- Check the New Address Is Free ---
	exists, err := accounts.EmailExists(ctx, input.NewEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "An account with this email already exists"})
		return
	}

	// 4. --- Move the Account & Re-verify ---
	otp := generateOTP()
	if err := accounts.ChangeEmail(ctx, sessionEmail, input.NewEmail, otp, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update email"})
		return
	}

	h.Notifier.SendEmail(input.NewEmail, "Verify your new email address",
		fmt.Sprintf("<p>Your verification code is <b>%s</b>. It expires in 10 minutes.</p>", otp))

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Email updated. Please verify your new address.",
		"requireOtp": true,
	})
}
