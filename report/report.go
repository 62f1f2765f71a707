package report

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// HTMLToPDF renders an HTML document to PDF through headless Chrome.
// Chrome startup dominates the cost, so callers should treat this as a
// slow endpoint.
func HTMLToPDF(html string) ([]byte, error) {
	u, err := launcher.New().
		Headless(true).
		Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	var pdf []byte
	err = rod.Try(func() {
		page := browser.MustPage("about:blank")
		page.MustSetDocumentContent(html)
		page.MustWaitStable()
		pdf = page.MustPDF()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return pdf, nil
}
