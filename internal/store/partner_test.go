package store_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partner-calendar-backend/internal/models"
	"partner-calendar-backend/internal/store"
)

func testImage(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Acme_Corp", store.SanitizeName("Acme Corp"))
	assert.Equal(t, "Acme", store.SanitizeName("  Acme "))
}

func TestInitPartnerDefaultsToDraft(t *testing.T) {
	s, err := store.NewPartnerStore(t.TempDir())
	require.NoError(t, err)

	status, err := s.InitPartner("Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", status.Partner)
	assert.Equal(t, models.StateDraft, status.State)
	assert.Nil(t, status.FinalizedAt)

	assert.DirExists(t, s.DraftDir("Acme Corp"))
	assert.FileExists(t, filepath.Join(filepath.Dir(s.DraftDir("Acme Corp")), "status.json"))

	// Second init keeps the existing record.
	again, err := s.InitPartner("Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, status.State, again.State)
}

func TestLoadStatusTreatsMalformedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewPartnerStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Acme"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Acme", "status.json"), []byte("{broken"), 0o644))

	status := s.LoadStatus("Acme")
	assert.Equal(t, models.StateDraft, status.State)
	assert.Nil(t, status.FinalizedAt)
}

func TestHasDraftAndWriteDraftImage(t *testing.T) {
	s, err := store.NewPartnerStore(t.TempDir())
	require.NoError(t, err)

	assert.False(t, s.HasDraft("Acme"))

	require.NoError(t, s.WriteDraftImage("Acme", "January", testImage(t, color.White)))
	assert.True(t, s.HasDraft("Acme"))

	files, err := s.DraftFiles("Acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"January.jpg"}, files)

	// Output is a decodable JPEG.
	data, err := os.ReadFile(filepath.Join(s.DraftDir("Acme"), "January.jpg"))
	require.NoError(t, err)
	_, err = jpeg.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestWriteDraftImageRejectsGarbage(t *testing.T) {
	s, err := store.NewPartnerStore(t.TempDir())
	require.NoError(t, err)

	err = s.WriteDraftImage("Acme", "January", []byte("not an image"))
	assert.Error(t, err)
}

func TestCopyDraftToFinal(t *testing.T) {
	s, err := store.NewPartnerStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.WriteDraftImage("Acme", "January", testImage(t, color.White)))
	require.NoError(t, s.WriteDraftImage("Acme", "February", testImage(t, color.Black)))

	require.NoError(t, s.CopyDraftToFinal("Acme"))

	finals, err := s.FinalFiles("Acme")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"January.jpg", "February.jpg"}, finals)

	// Byte-for-byte copies, no re-encode.
	draft, err := os.ReadFile(filepath.Join(s.DraftDir("Acme"), "January.jpg"))
	require.NoError(t, err)
	final, err := os.ReadFile(filepath.Join(s.FinalDir("Acme"), "January.jpg"))
	require.NoError(t, err)
	assert.Equal(t, draft, final)
}

func TestListFinalized(t *testing.T) {
	s, err := store.NewPartnerStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.InitPartner("Acme")
	require.NoError(t, err)
	status, err := s.InitPartner("Globex")
	require.NoError(t, err)

	status.State = models.StateFinal
	require.NoError(t, s.SaveStatus(status))

	finalized, err := s.ListFinalized()
	require.NoError(t, err)
	assert.True(t, finalized["Globex"])
	assert.False(t, finalized["Acme"])

	assert.True(t, s.IsFinalized("Globex"))
	assert.False(t, s.IsFinalized("Acme"))
}
