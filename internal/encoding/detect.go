package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Grant CSVs come out of back-office spreadsheet tools, which means BOMs,
// UTF-16 exports and legacy single-byte charsets all show up in practice.

const peekSize = 4096

// NewUTF8Reader wraps r so that its content reads as UTF-8, detecting the
// source encoding from the first few KB. Valid UTF-8 passes through
// untouched; everything else is decoded, falling back to Windows-1252 when
// detection is inconclusive.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	buf, err := br.Peek(peekSize)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	if dec, bomLen := bomDecoder(buf); bomLen > 0 {
		if dec == nil {
			// UTF-8 BOM: strip it and pass through.
			_, _ = br.Discard(bomLen)
			return br, nil
		}

		return transform.NewReader(br, dec.NewDecoder()), nil
	}

	if utf8.Valid(buf) {
		return br, nil
	}

	return transform.NewReader(br, detectDecoder(buf).NewDecoder()), nil
}

// bomDecoder inspects buf for a byte-order mark. A non-zero length with a
// nil encoding means a UTF-8 BOM that only needs stripping.
func bomDecoder(buf []byte) (encoding.Encoding, int) {
	switch {
	case bytes.HasPrefix(buf, []byte{0xEF, 0xBB, 0xBF}):
		return nil, 3
	case bytes.HasPrefix(buf, []byte{0xFF, 0xFE}):
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), 2
	case bytes.HasPrefix(buf, []byte{0xFE, 0xFF}):
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), 2
	}

	return nil, 0
}

func detectDecoder(buf []byte) encoding.Encoding {
	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err != nil {
		return charmap.Windows1252
	}

	switch result.Charset {
	case "ISO-8859-1", "windows-1252":
		return charmap.Windows1252
	case "ISO-8859-15":
		return charmap.ISO8859_15
	}

	return charmap.Windows1252
}
