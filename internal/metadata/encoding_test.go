package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeTextUTF8(t *testing.T) {
	text, enc, lossy := DecodeText([]byte("hello, 世界\n"))
	assert.Equal(t, "hello, 世界\n", text)
	assert.Equal(t, "utf-8", enc)
	assert.False(t, lossy)
}

func TestDecodeTextUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("bom content")...)
	text, enc, lossy := DecodeText(data)
	// Plain UTF-8 validation accepts the BOM bytes too, so the first chain
	// entry wins and the BOM stays in the text.
	assert.Equal(t, "utf-8", enc)
	assert.Contains(t, text, "bom content")
	assert.False(t, lossy)
}

// Bytes that are invalid UTF-8 fall through to ISO-8859-1, which maps every
// byte, so decoding never reaches the lossy fallback.
func TestDecodeTextLatin1Fallthrough(t *testing.T) {
	data := []byte{'c', 'a', 'f', 0xE9} // "café" in Latin-1
	text, enc, lossy := DecodeText(data)
	assert.Equal(t, "café", text)
	assert.Equal(t, "iso-8859-1", enc)
	assert.False(t, lossy)
}

func TestDecodeTextEmpty(t *testing.T) {
	text, enc, lossy := DecodeText(nil)
	assert.Equal(t, "", text)
	assert.Equal(t, "utf-8", enc)
	assert.False(t, lossy)
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"single line no newline", "one", 1},
		{"single line with newline", "one\n", 1},
		{"three lines", "a\nb\nc\n", 3},
		{"trailing content", "a\nb", 2},
		{"blank lines counted", "\n\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountLines(tt.text))
		})
	}
}
