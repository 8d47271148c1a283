package services

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 20
)

type TextChuncker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChuncker {
	return &textChunker{}
}

// ChunkText implements TextChuncker. Every chunk is at most maxChunkSize
// runes and, apart from the first, starts with the last overlap runes of the
// chunk before it.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	// Room left for a unit once the overlap prefix and a separator are in place.
	unitLimit := maxChunkSize - overlap - 2
	if unitLimit < 1 {
		unitLimit = 1
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
			tail := getLastNChars(chunk, overlap)
			current.WriteString(tail)
			currentLen = utf8.RuneCountInString(tail)
		}
	}

	for _, u := range splitUnits(text, unitLimit) {
		sepLen := 0
		if currentLen > 0 {
			sepLen = utf8.RuneCountInString(u.sep)
		}
		unitLen := utf8.RuneCountInString(u.text)

		if currentLen+sepLen+unitLen > maxChunkSize {
			flush()
			sepLen = 0
			if currentLen > 0 {
				sepLen = utf8.RuneCountInString(u.sep)
			}
		}

		if currentLen > 0 {
			current.WriteString(u.sep)
		}
		current.WriteString(u.text)
		currentLen += sepLen + unitLen
	}

	// Add remaining chunk unless it is only the carried overlap
	if currentLen > 0 && (len(chunks) == 0 || currentLen > minInt(overlap, utf8.RuneCountInString(chunks[len(chunks)-1]))) {
		chunks = append(chunks, current.String())
	}

	return chunks
}

type textUnit struct {
	text string
	sep  string
}

// splitUnits breaks text into paragraphs, long paragraphs into sentences and
// long sentences into fixed rune windows, so no unit exceeds limit runes.
func splitUnits(text string, limit int) []textUnit {
	var units []textUnit
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= limit {
			units = append(units, textUnit{text: para, sep: "\n\n"})
			continue
		}

		sep := "\n\n"
		for _, sentence := range splitIntoSentences(para) {
			for _, piece := range splitRunes(sentence, limit) {
				units = append(units, textUnit{text: piece, sep: sep})
				sep = " "
			}
		}
	}
	return units
}

// splitIntoSentences keeps the terminating punctuation on each sentence.
func splitIntoSentences(text string) []string {
	var result []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				result = append(result, s)
			}
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		result = append(result, rest)
	}
	return result
}

func splitRunes(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	var out []string
	for len(runes) > 0 {
		n := limit
		if n > len(runes) {
			n = len(runes)
		}
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return out
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

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
