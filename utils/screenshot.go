package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// ScreenshotDebugger captures full-page screenshots when a publish step
// goes wrong, so failures can be diagnosed without rerunning.
type ScreenshotDebugger struct {
	outputDir string
	log       *logrus.Logger
}

func NewScreenshotDebugger(outputDir string, log *logrus.Logger) *ScreenshotDebugger {
	os.MkdirAll(outputDir, 0755)
	return &ScreenshotDebugger{outputDir: outputDir, log: log}
}

func (s *ScreenshotDebugger) CaptureAndLog(page playwright.Page, name, message string) error {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s.png", name, timestamp)
	path := filepath.Join(s.outputDir, filename)
	s.log.Errorf("📸 %s", message)

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		s.log.Errorf("⚠️ Failed to capture screenshot: %v", err)
		return err
	}

	s.log.Errorf("   Screenshot saved: %s", path)
	return nil
}
