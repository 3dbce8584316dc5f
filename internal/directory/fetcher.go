package directory

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultDriveBaseURL = "https://drive.google.com/uc?id="

// DriveFetcher downloads a partner's source photo by its opaque file
// reference. Fetch failures are hard failures: the caller aborts the current
// cycle without touching persisted state.
type DriveFetcher struct {
	baseURL    string
	httpClient *http.Client
}

func NewDriveFetcher() *DriveFetcher {
	return &DriveFetcher{
		baseURL: defaultDriveBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// NewDriveFetcherWithBaseURL exists for tests that point the fetcher at a
// local server.
func NewDriveFetcherWithBaseURL(baseURL string) *DriveFetcher {
	f := NewDriveFetcher()
	f.baseURL = baseURL
	return f
}

func (f *DriveFetcher) FetchImage(fileID string) ([]byte, error) {
	resp, err := f.httpClient.Get(f.baseURL + fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source image %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch source image %s: status %d", fileID, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read source image %s: %w", fileID, err)
	}

	return data, nil
}
