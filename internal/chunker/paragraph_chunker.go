package chunker

import (
	"regexp"
	"strings"
)

// ParagraphChunker splits text into trimmed, non-empty paragraphs. Text
// without blank lines is split per line instead.
type ParagraphChunker struct {
	blankLine *regexp.Regexp
}

func NewParagraphChunker() *ParagraphChunker {
	return &ParagraphChunker{blankLine: regexp.MustCompile(`\n[ \t\r]*\n`)}
}

func (c *ParagraphChunker) Split(text string) []string {
	paragraphs := nonEmpty(c.blankLine.Split(text, -1))
	if len(paragraphs) > 1 {
		return paragraphs
	}
	return nonEmpty(strings.Split(text, "\n"))
}

// SentenceChunker splits text into sentences ending in '.', '!' or '?'.
// A trailing fragment without terminal punctuation is kept as a sentence.
type SentenceChunker struct {
	splitter *regexp.Regexp
}

func NewSentenceChunker() *SentenceChunker {
	return &SentenceChunker{splitter: regexp.MustCompile(`[^.!?]+[.!?]+`)}
}

func (c *SentenceChunker) Split(text string) []string {
	locs := c.splitter.FindAllStringIndex(text, -1)
	sentences := make([]string, 0, len(locs)+1)
	end := 0
	for _, loc := range locs {
		sentences = append(sentences, text[loc[0]:loc[1]])
		end = loc[1]
	}
	sentences = append(sentences, text[end:])
	return nonEmpty(sentences)
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
