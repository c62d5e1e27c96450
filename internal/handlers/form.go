package handlers

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/candidate-scorer/internal/models"
)

// parseScoreForm reads the multipart resume form shared by /score and /evaluate.
// Errors are *fiber.Error with status 400.
func parseScoreForm(c *fiber.Ctx, maxFileSize int64) (models.ScoreRequest, error) {
	var req models.ScoreRequest

	file, err := c.FormFile("resume")
	if err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "resume file is required")
	}

	if maxFileSize > 0 && file.Size > maxFileSize {
		return req, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("resume file too large. Max size: %d bytes", maxFileSize))
	}

	docType, err := models.ParseDocumentType(file.Filename)
	if err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "only PDF, DOCX and TXT resumes are supported")
	}

	src, err := file.Open()
	if err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "failed to open uploaded file")
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "failed to read uploaded file")
	}

	jobDescription := strings.TrimSpace(c.FormValue("job_description"))
	if jobDescription == "" {
		return req, fiber.NewError(fiber.StatusBadRequest, "job_description is required")
	}

	req.Document = models.RawDocument{
		Filename: file.Filename,
		Type:     docType,
		Content:  content,
	}
	req.JobDescription = jobDescription
	req.Manual = models.ProfileURLs{
		GitHub:    optionalField(c, "github_url"),
		LinkedIn:  optionalField(c, "linkedin_url"),
		Portfolio: optionalField(c, "portfolio_url"),
	}
	req.UseCache = true
	if v := c.FormValue("use_cache"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			req.UseCache = b
		}
	}

	return req, nil
}

func optionalField(c *fiber.Ctx, key string) *string {
	v := strings.TrimSpace(c.FormValue(key))
	if v == "" {
		return nil
	}
	return &v
}
