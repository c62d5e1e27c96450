package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/candidate-scorer/internal/models"
)

func TestCleanText(t *testing.T) {
	in := "  Jane Smith\n\n Senior Engineer ★ Go/Python\t| github.com/janesmith  "
	assert.Equal(t, "Jane Smith Senior Engineer Go/Python github.com/janesmith", CleanText(in))
	assert.Equal(t, "", CleanText("★ ★ \n\t"))
}

func TestExtractTextPlain(t *testing.T) {
	parser := NewDocumentParser()

	text, err := parser.ExtractText(models.RawDocument{Type: models.DocumentTXT, Content: []byte("Jane Smith\nEngineer")})
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith Engineer", text)

	_, err = parser.ExtractText(models.RawDocument{Type: models.DocumentTXT, Content: []byte("  \n  ")})
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = parser.ExtractText(models.RawDocument{Type: "rtf", Content: []byte("x")})
	assert.ErrorIs(t, err, ErrUnsupportedDocument)
}

func TestExtractTextCorruptPDF(t *testing.T) {
	_, err := NewDocumentParser().ExtractText(models.RawDocument{Type: models.DocumentPDF, Content: []byte("not a pdf")})
	assert.Error(t, err)
}

func TestParseDocumentType(t *testing.T) {
	for _, in := range []string{"pdf", "resume.PDF", "cv.docx", ".txt"} {
		_, err := models.ParseDocumentType(in)
		assert.NoError(t, err, in)
	}
	_, err := models.ParseDocumentType("resume.rtf")
	assert.Error(t, err)
}
