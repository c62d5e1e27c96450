package services

import (
	"strings"
	"unicode/utf8"
)

type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText implements TextChunker. Resume text arrives whitespace-collapsed,
// so chunks are packed from sentences; a sentence longer than maxChunkSize is
// split on word boundaries. Sizes are in runes.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen == 0 {
			return
		}
		chunk := current.String()
		chunks = append(chunks, chunk)
		current.Reset()
		currentLen = 0
		if overlap > 0 {
			tail := strings.TrimSpace(getLastNChars(chunk, overlap))
			current.WriteString(tail)
			currentLen = utf8.RuneCountInString(tail)
		}
	}

	for _, piece := range splitIntoPieces(text, maxChunkSize-overlap-1) {
		n := utf8.RuneCountInString(piece)
		if currentLen > 0 && currentLen+1+n > maxChunkSize {
			flush()
		}
		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(piece)
		currentLen += n
	}

	// A trailing chunk made only of overlap adds nothing new.
	if currentLen > 0 && (len(chunks) == 0 || !strings.HasSuffix(chunks[len(chunks)-1], current.String())) {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// splitIntoPieces yields sentences, breaking any longer than limit runes into word runs.
func splitIntoPieces(text string, limit int) []string {
	if limit < 1 {
		limit = 1
	}
	var pieces []string
	for _, sentence := range splitIntoSentences(text) {
		if utf8.RuneCountInString(sentence) <= limit {
			pieces = append(pieces, sentence)
			continue
		}
		var run strings.Builder
		runLen := 0
		for _, word := range strings.Fields(sentence) {
			wl := utf8.RuneCountInString(word)
			if runLen > 0 && runLen+1+wl > limit {
				pieces = append(pieces, run.String())
				run.Reset()
				runLen = 0
			}
			if runLen > 0 {
				run.WriteString(" ")
				runLen++
			}
			run.WriteString(word)
			runLen += wl
		}
		if runLen > 0 {
			pieces = append(pieces, run.String())
		}
	}
	return pieces
}

// splitIntoSentences keeps the terminating punctuation with each sentence.
func splitIntoSentences(text string) []string {
	var result []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				result = append(result, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		result = append(result, s)
	}
	return result
}

func getLastNChars(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
