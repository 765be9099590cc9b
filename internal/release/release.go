package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// LatestURL is the GitHub API endpoint for the newest published release.
const LatestURL = "https://api.github.com/repos/qlens/qlens/releases/latest"

const userAgent = "qlens-release-check"

// Release is the subset of the GitHub release payload we care about.
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
}

// Check fetches the latest published release from apiURL and reports
// whether it is newer than the running version. Development builds
// always report an update available.
func Check(ctx context.Context, current, apiURL string) (*Release, bool, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("github API returned status: %d", resp.StatusCode)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, false, err
	}

	if current == "dev" {
		return &rel, true, nil
	}

	latest := strings.TrimPrefix(rel.TagName, "v")
	running := strings.TrimPrefix(current, "v")
	return &rel, latest != running, nil
}
