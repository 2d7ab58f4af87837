package infra

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"pricefx/internal/domain"

	"github.com/disintegration/imaging"
)

// flagCountry maps currency codes whose flag country cannot be derived
// from the code itself. For everything else the first two letters of the
// ISO 4217 code are the ISO 3166 country code.
var flagCountry = map[domain.Code]string{
	domain.EUR: "eu",
	domain.CHF: "ch",
	"XCD":      "ag",
	"XOF":      "sn",
	"ANG":      "cw",
}

// FlagDownloader fetches and caches currency flag icons for the switcher
// widget, resized to a uniform 24x24.
type FlagDownloader struct {
	basePath string
	cdnURL   string
	client   *http.Client
}

// NewFlagDownloader creates a FlagDownloader caching under the user
// config directory.
func NewFlagDownloader() (*FlagDownloader, error) {
	path, err := flagAssetsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assets path: %w", err)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create assets directory: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxConnsPerHost = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &FlagDownloader{
		basePath: path,
		cdnURL:   "https://flagcdn.com/w80/%s.png",
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}, nil
}

// DownloadFlag fetches the flag icon for a currency if not already
// cached, returning the local file path.
func (d *FlagDownloader) DownloadFlag(code domain.Code) (string, error) {
	country := countryFor(code)
	if country == "" {
		return "", fmt.Errorf("no flag country for currency %s", code)
	}

	filePath := filepath.Join(d.basePath, country+".png")
	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil // Cache hit
	}

	resp, err := d.client.Get(fmt.Sprintf(d.cdnURL, country))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	srcImg, err := imaging.Decode(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to decode flag image: %w", err)
	}

	// uniform switcher icons, Lanczos keeps small flags readable
	resized := imaging.Resize(srcImg, 24, 24, imaging.Lanczos)

	if err := imaging.Save(resized, filePath); err != nil {
		return "", fmt.Errorf("failed to save flag image: %w", err)
	}
	return filePath, nil
}

// FlagPath returns the local cache path for a currency's flag
func (d *FlagDownloader) FlagPath(code domain.Code) string {
	return filepath.Join(d.basePath, countryFor(code)+".png")
}

func countryFor(code domain.Code) string {
	if country, ok := flagCountry[code]; ok {
		return country
	}
	if len(code) != 3 {
		return ""
	}
	return strings.ToLower(string(code[:2]))
}

func flagAssetsPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "PriceFX", "assets", "flags"), nil
}
