package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/notify"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/posting"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/quota"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/store"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/subscription"
)

// Handlers holds all dependencies for the HTTP layer.
type Handlers struct {
	DB        *sql.DB
	Store     *store.Store
	Quota     *quota.Engine
	Lifecycle *subscription.Lifecycle
	Guard     *posting.Guard
	Notifier  *notify.Notifier
	Logger    *slog.Logger
}

// phonePattern matches Sri Lankan numbers in international format.
var phonePattern = regexp.MustCompile(`^\+94\d{9,10}$`)

// generateOTP returns a 6-digit verification code.
func generateOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(900000)+100000)
}

// saveUpload writes one uploaded file into the local uploads folder
// under a uuid filename and returns its public URL.
func (h *Handlers) saveUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	uploadPath := "./uploads"
	if _, err := os.Stat(uploadPath); os.IsNotExist(err) {
		os.Mkdir(uploadPath, 0755)
	}

	ext := filepath.Ext(file.Filename)
	newFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	savePath := filepath.Join(uploadPath, newFilename)

	if err := c.SaveUploadedFile(file, savePath); err != nil {
		return "", err
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return fmt.Sprintf("%s/uploads/%s", baseURL, newFilename), nil
}

// saveUploads saves a batch of files and returns their public URLs.
func (h *Handlers) saveUploads(c *gin.Context, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := h.saveUpload(c, file)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
