package bootstrap

import (
	"fmt"
	"io"
	"os"
	"strings"
)

var bannerColors = []string{
	"\x1b[38;5;165m",
	"\x1b[38;5;189m",
	"\x1b[38;5;207m",
	"\x1b[38;5;219m",
	"\x1b[38;5;225m",
	"\x1b[38;5;231m",
}

// PrintBannerFromFile prints the banner in filename, generating it first if
// needed, followed by the receptionist's current mood.
func PrintBannerFromFile(w io.Writer, filename, defaultText, mood string, traits []string) error {
	if err := EnsureBannerFile(filename, defaultText); err != nil {
		return fmt.Errorf("failed to ensure banner file: %w", err)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	i := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Fprintln(w, bannerColors[i%len(bannerColors)]+line+"\x1b[0m")
		i++
	}
	if mood != "" {
		fmt.Fprintf(w, "\nMood: %s\n", mood)
		for _, t := range traits {
			fmt.Fprintf(w, "   - %s\n", t)
		}
		fmt.Fprintln(w, "\n*DEEP SIGH* Ready for calls... again...")
	}
	return nil
}
