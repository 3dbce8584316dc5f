package gemini_test

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partner-calendar-backend/internal/gemini"
)

func writeTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range gemini.TemplateFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("template"), 0o644))
	}
	return dir
}

func imageResponse(data []byte) string {
	payload := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": "here is your calendar"},
						{"inlineData": map[string]string{
							"mimeType": "image/png",
							"data":     base64.StdEncoding.EncodeToString(data),
						}},
					},
				},
			},
		},
	}
	out, _ := json.Marshal(payload)
	return string(out)
}

func TestGenerateMonthReturnsInlineImage(t *testing.T) {
	templatesDir := writeTemplates(t)

	var gotPath string
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		fmt.Fprint(w, imageResponse([]byte("generated-image")))
	}))
	defer server.Close()

	client := gemini.NewClient(server.URL, "test-key", "models/test-model", templatesDir)

	data, err := client.GenerateMonth([]byte("partner-photo"), "March")
	require.NoError(t, err)
	assert.Equal(t, []byte("generated-image"), data)
	assert.Equal(t, "/models/test-model:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
}

func TestGenerateMonthFailsWithoutImagePart(t *testing.T) {
	templatesDir := writeTemplates(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`)
	}))
	defer server.Close()

	client := gemini.NewClient(server.URL, "test-key", "models/test-model", templatesDir)

	_, err := client.GenerateMonth([]byte("partner-photo"), "July")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "July")
}

func TestGenerateMonthRejectsUnknownMonth(t *testing.T) {
	client := gemini.NewClient("http://unused", "test-key", "models/test-model", t.TempDir())

	_, err := client.GenerateMonth([]byte("partner-photo"), "Smarch")
	assert.Error(t, err)
}

func TestGenerateMonthPropagatesAPIErrors(t *testing.T) {
	templatesDir := writeTemplates(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exhausted"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := gemini.NewClient(server.URL, "test-key", "models/test-model", templatesDir)

	_, err := client.GenerateMonth([]byte("partner-photo"), "January")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestMonthTables(t *testing.T) {
	assert.Len(t, gemini.Months, 12)
	assert.Equal(t, "January", gemini.Months[0])
	assert.Equal(t, "December", gemini.Months[11])

	for _, month := range gemini.Months {
		assert.True(t, gemini.IsMonth(month))
		assert.Contains(t, gemini.TemplateFiles, month)
		assert.Contains(t, gemini.CropBoxes, month)
	}
	assert.False(t, gemini.IsMonth("january"))
}
