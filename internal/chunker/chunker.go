// Package chunker splits long texts into pieces that fit a translation
// backend's per-request size limit.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxBytes keeps requests under Amazon Translate's 10,000 byte limit
// with room for multi-byte growth.
const DefaultMaxBytes = 9000

// Split breaks text into chunks of at most maxBytes bytes. Sentences are kept
// whole where possible; a sentence longer than maxBytes is split at word
// boundaries, and a single oversized word at rune boundaries.
// Joining the chunks with a single space restores the text up to
// whitespace normalisation.
func Split(text string, maxBytes int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(text) <= maxBytes {
		return []string{text}
	}

	var pieces []string
	for _, sentence := range Sentences(text) {
		if len(sentence) <= maxBytes {
			pieces = append(pieces, sentence)
			continue
		}
		for _, word := range strings.Fields(sentence) {
			if len(word) <= maxBytes {
				pieces = append(pieces, word)
				continue
			}
			pieces = append(pieces, splitRunes(word, maxBytes)...)
		}
	}

	return pack(pieces, maxBytes)
}

// Sentences splits text after '.', '!' or '?' followed by whitespace.
// Returned sentences are trimmed.
func Sentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i + 1
		next, _ := utf8.DecodeRuneInString(text[end:])
		if end < len(text) && unicode.IsSpace(next) {
			if s := strings.TrimSpace(text[start:end]); s != "" {
				sentences = append(sentences, s)
			}
			start = end
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// pack greedily joins pieces with a space while the result fits maxBytes.
func pack(pieces []string, maxBytes int) []string {
	var chunks []string
	var current strings.Builder

	for _, piece := range pieces {
		// If adding this piece would exceed the limit, start a new chunk
		if current.Len() > 0 && current.Len()+1+len(piece) > maxBytes {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(piece)
	}

	// Flush remaining chunk
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// splitRunes cuts s into parts of at most maxBytes without breaking a rune.
func splitRunes(s string, maxBytes int) []string {
	var parts []string
	for len(s) > maxBytes {
		cut := maxBytes
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			// maxBytes is smaller than one rune
			_, cut = utf8.DecodeRuneInString(s)
		}
		parts = append(parts, s[:cut])
		s = s[cut:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
