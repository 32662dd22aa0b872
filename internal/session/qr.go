package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/mdp/qrterminal/v3"

	"github.com/wednesdev-id/puller-chat-dashboard/internal/logger"
)

// TerminalPresenter surfaces the pairing artifact to the operator. A
// textual artifact is rendered as a scannable QR code in the terminal;
// binary artifacts (the bridge usually returns a PNG screenshot) are
// written to a file and the path logged together with the dashboard URL.
type TerminalPresenter struct {
	DashboardURL string
	Log          *logger.Logger
}

// Present implements QRPresenter
func (p *TerminalPresenter) Present(artifact []byte, contentType string) {
	if isTextual(artifact, contentType) {
		fmt.Println("\n" + strings.Repeat("=", 64))
		fmt.Println("SCAN QR CODE WITH WHATSAPP MOBILE APP")
		fmt.Println(strings.Repeat("=", 64))

		cfg := qrterminal.Config{
			Level:      qrterminal.M,
			Writer:     os.Stdout,
			HalfBlocks: true,
			QuietZone:  1,
		}
		qrterminal.GenerateWithConfig(strings.TrimSpace(string(artifact)), cfg)

		fmt.Println(strings.Repeat("=", 64) + "\n")
		return
	}

	path := filepath.Join(os.TempDir(), "whatsapp-pairing.png")
	if err := os.WriteFile(path, artifact, 0o600); err != nil {
		p.Log.Error("Failed to save pairing screenshot", err)
	} else {
		p.Log.Infof("Pairing screenshot saved to %s", path)
	}
	if p.DashboardURL != "" {
		p.Log.Infof("Scan the QR code on the bridge dashboard: %s", p.DashboardURL)
	}
}

func isTextual(artifact []byte, contentType string) bool {
	if strings.HasPrefix(contentType, "text/") {
		return true
	}
	if strings.HasPrefix(contentType, "image/") {
		return false
	}
	// No usable content type: treat short valid UTF-8 payloads as QR values
	return len(artifact) > 0 && len(artifact) < 2048 && utf8.Valid(artifact)
}
