package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOCRServiceDefaults(t *testing.T) {
	svc := NewOCRService("", 0)
	assert.Equal(t, "kor+eng", svc.languages)
	assert.Equal(t, 0.5, svc.minConfidence)

	svc = NewOCRService("eng", 0.8)
	assert.Equal(t, "eng", svc.languages)
	assert.Equal(t, 0.8, svc.minConfidence)
}

func TestParseTSV(t *testing.T) {
	header := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext"
	lines := []string{
		header,
		"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t",     // page row, no text
		"5\t1\t1\t1\t1\t1\t10\t10\t40\t12\t96.5\tHello", // confident word
		"5\t1\t1\t1\t1\t2\t55\t10\t40\t12\t30\tnoise",   // low confidence word
		"5\t1\t1\t1\t1\t3\t99\t10\t40\t12\t88\t ",       // whitespace only
		"malformed line",
		"",
	}

	words := parseTSV(strings.Join(lines, "\n"))

	require.Len(t, words, 2)
	assert.Equal(t, "Hello", words[0].Text)
	assert.Equal(t, 96.5, words[0].Confidence)
	assert.Equal(t, "noise", words[1].Text)
	assert.Equal(t, 30.0, words[1].Confidence)
}
