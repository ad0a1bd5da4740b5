package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
)

const figletURL = "https://patorjk.com/software/taag/ajax/convert.php"

// GenerateBanner renders text as Doom-font ASCII art and writes it to
// filename, falling back to a plain framed banner when the figlet service is
// unreachable.
func GenerateBanner(ctx context.Context, text, filename string) error {
	banner, err := fetchFiglet(ctx, text)
	if err != nil {
		fmt.Printf("figlet service unavailable, using plain banner: %v\n", err)
		banner = plainBanner(text)
	}
	return os.WriteFile(filename, []byte(banner+"\n"), 0o644)
}

func fetchFiglet(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var body string
	err := requests.
		URL(figletURL).
		Param("text", text).
		Param("font", "doom").
		UserAgent("Mozilla/5.0 (X11; Linux x86_64)").
		Accept("text/plain, */*").
		Header("Referer", "https://patorjk.com/software/taag/").
		ToString(&body).
		Fetch(ctx)
	if err != nil {
		return "", err
	}

	if strings.Contains(body, "<!DOCTYPE") || strings.Contains(body, "<html") {
		return "", errors.New("figlet service returned an HTML page")
	}
	banner := strings.TrimSpace(body)
	for _, br := range []string{"<br>", "<br/>", "<br />"} {
		banner = strings.ReplaceAll(banner, br, "\n")
	}
	if banner == "" || !strings.ContainsAny(banner, "|_/\\-=") {
		return "", errors.New("figlet service returned no ASCII art")
	}
	return banner, nil
}

func plainBanner(text string) string {
	line := strings.Repeat("=", len(text)+8)
	return line + "\n=== " + strings.ToUpper(text) + " ===\n" + line
}

// EnsureBannerFile generates filename from defaultText unless it exists.
func EnsureBannerFile(filename, defaultText string) error {
	if _, err := os.Stat(filename); !os.IsNotExist(err) {
		return err
	}
	if defaultText == "" {
		defaultText = "LingReception"
	}
	fmt.Printf("Banner file not found, generating %s...\n", filename)
	if err := GenerateBanner(context.Background(), defaultText, filename); err != nil {
		return fmt.Errorf("failed to generate banner file: %w", err)
	}
	return nil
}
