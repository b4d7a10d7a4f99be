package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soaringjerry/stylus/internal/models"
)

// ExportFile is a rendered attachment ready to be written to an HTTP response.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ContentDisposition returns the attachment header value for the file.
func (f *ExportFile) ContentDisposition() string {
	return fmt.Sprintf("attachment; filename=%q", f.Filename)
}

// ExportFilename names the download for a session.
func ExportFilename(sessionID string) string {
	return "ai-writing-preferences-" + sanitizeFilename(sessionID) + ".json"
}

// ExportJSON renders a response into the export document.
func ExportJSON(resp *models.SurveyResponse) (*ExportFile, error) {
	b, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return &ExportFile{
		Filename:    ExportFilename(resp.SessionID),
		ContentType: "application/json",
		Body:        b,
	}, nil
}

// sanitizeFilename drops characters that would break a quoted header value.
func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '"', r == '\\', r == '/':
			return '_'
		case r < 0x20, r == 0x7f:
			return -1
		}
		return r
	}, s)
}
