package metadata

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// textDecoder is one attempt in the ordered decode chain.
type textDecoder struct {
	name   string
	decode func(data []byte) (string, bool)
}

// decodeChain lists the attempted encodings in priority order. The first
// decoder that accepts the bytes wins. ISO-8859-1 maps every byte, so in
// practice the chain always terminates there at the latest; the later
// entries keep the documented order intact.
func decodeChain() []textDecoder {
	return []textDecoder{
		{"utf-8", decodeUTF8},
		{"utf-8-sig", decodeUTF8SIG},
		{"ascii", decodeASCII},
		{"iso-8859-1", charmapDecoder(charmap.ISO8859_1)},
		{"windows-1252", charmapDecoder(charmap.Windows1252)},
		{"utf-16", utf16Decoder(unicode.LittleEndian, unicode.ExpectBOM)},
		{"utf-16-le", utf16Decoder(unicode.LittleEndian, unicode.IgnoreBOM)},
		{"utf-16-be", utf16Decoder(unicode.BigEndian, unicode.IgnoreBOM)},
	}
}

// DecodeText decodes raw file bytes by attempting each encoding in the
// chain. It returns the decoded text, the name of the winning encoding, and
// whether a lossy replacement fallback was needed (no attempted encoding
// accepted the bytes).
func DecodeText(data []byte) (text string, encodingName string, lossy bool) {
	for _, dec := range decodeChain() {
		if s, ok := dec.decode(data); ok {
			return s, dec.name, false
		}
	}

	// Last resort: UTF-8 with invalid sequences replaced.
	return strings.ToValidUTF8(string(data), string(utf8.RuneError)), "utf-8", true
}

func decodeUTF8(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

func decodeUTF8SIG(data []byte) (string, bool) {
	if !bytes.HasPrefix(data, utf8BOM) {
		return "", false
	}
	rest := data[len(utf8BOM):]
	if !utf8.Valid(rest) {
		return "", false
	}
	return string(rest), true
}

func decodeASCII(data []byte) (string, bool) {
	for _, b := range data {
		if b >= 0x80 {
			return "", false
		}
	}
	return string(data), true
}

func charmapDecoder(cm *charmap.Charmap) func([]byte) (string, bool) {
	return func(data []byte) (string, bool) {
		out, err := cm.NewDecoder().Bytes(data)
		if err != nil {
			return "", false
		}
		return string(out), true
	}
}

func utf16Decoder(endian unicode.Endianness, bom unicode.BOMPolicy) func([]byte) (string, bool) {
	return func(data []byte) (string, bool) {
		if len(data)%2 != 0 {
			return "", false
		}
		var enc encoding.Encoding = unicode.UTF16(endian, bom)
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", false
		}
		return string(out), true
	}
}

// CountLines counts the lines of decoded text the way a splitlines call
// would: a trailing newline does not start an extra empty line.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
