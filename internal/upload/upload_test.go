package upload

import (
	"bytes"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rebertiger/student-chat/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"image/png", models.MessageTypeImage},
		{"image/jpeg", models.MessageTypeImage},
		{"application/pdf", models.MessageTypePDF},
		{"text/plain; charset=utf-8", models.MessageTypeFile},
		{"application/zip", models.MessageTypeFile},
		{"", models.MessageTypeFile},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.mime))
		})
	}
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestStore_Save_PDF(t *testing.T) {
	store, err := NewStore(t.TempDir(), 10)
	require.NoError(t, err)

	fh := fileHeader(t, "notes.pdf", []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF"))
	desc, err := store.Save(fh)
	require.NoError(t, err)

	require.Equal(t, models.MessageTypePDF, desc.MessageType)
	require.Equal(t, "notes.pdf", desc.OriginalName)
	require.True(t, strings.HasPrefix(desc.URL, "/uploads/"))
	require.True(t, strings.HasSuffix(desc.URL, ".pdf"))
	// stored name must not be the client's name
	require.NotContains(t, desc.URL, "notes")
}

func TestStore_Save_PNG(t *testing.T) {
	store, err := NewStore(t.TempDir(), 10)
	require.NoError(t, err)

	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
	desc, err := store.Save(fileHeader(t, "avatar.png", png))
	require.NoError(t, err)
	require.Equal(t, models.MessageTypeImage, desc.MessageType)
}

func TestStore_Save_GenericFile(t *testing.T) {
	store, err := NewStore(t.TempDir(), 10)
	require.NoError(t, err)

	desc, err := store.Save(fileHeader(t, "todo.txt", []byte("just some text")))
	require.NoError(t, err)
	require.Equal(t, models.MessageTypeFile, desc.MessageType)
}

func TestStore_Save_TooLarge(t *testing.T) {
	store, err := NewStore(t.TempDir(), 1)
	require.NoError(t, err)

	big := make([]byte, 2<<20)
	_, err = store.Save(fileHeader(t, "big.bin", big))
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestStore_Save_UniqueNames(t *testing.T) {
	store, err := NewStore(t.TempDir(), 10)
	require.NoError(t, err)

	a, err := store.Save(fileHeader(t, "same.txt", []byte("a")))
	require.NoError(t, err)
	b, err := store.Save(fileHeader(t, "same.txt", []byte("b")))
	require.NoError(t, err)
	require.NotEqual(t, a.URL, b.URL)
}

func TestSanitizeExt(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"report.PDF", ".pdf"},
		{"noext", ""},
		{"weird.averylongextension", ""},
		{"a.tar.gz", ".gz"},
	}
	for _, tt := range tests {
		if got := sanitizeExt(tt.name); got != tt.want {
			t.Errorf("sanitizeExt(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
