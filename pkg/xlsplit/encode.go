package xlsplit

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
)

const (
	fieldSeparator = ','
	quoteChar      = '"'
	lineBreak      = '\n'
)

// specialChars are the characters that force a value to be quoted.
const specialChars = ",\"\n\r"

// EncodeCSV serializes a header line followed by one line per record.
// Every line, including the last, ends with "\n".
func EncodeCSV(header models.Header, records []models.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, header, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes the encoded header and records to w.
func EncodeTo(w io.Writer, header models.Header, records []models.Record) error {
	bw := bufio.NewWriter(w)
	writeLine(bw, header, len(header))
	for _, rec := range records {
		writeLine(bw, rec, len(header))
	}
	return bw.Flush()
}

// writeLine writes width fields, padding short lines with empty fields.
// bufio.Writer keeps the first error and reports it on Flush.
func writeLine(w *bufio.Writer, fields []string, width int) {
	for i := 0; i < width; i++ {
		if i > 0 {
			w.WriteByte(fieldSeparator)
		}
		if i < len(fields) {
			writeField(w, fields[i])
		}
	}
	w.WriteByte(lineBreak)
}

func writeField(w *bufio.Writer, v string) {
	if !strings.ContainsAny(v, specialChars) {
		w.WriteString(v)
		return
	}
	w.WriteByte(quoteChar)
	w.WriteString(strings.ReplaceAll(v, `"`, `""`))
	w.WriteByte(quoteChar)
}

// EscapeField returns v as it appears in an encoded line.
func EscapeField(v string) string {
	if !strings.ContainsAny(v, specialChars) {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// DecodeCSV parses content produced by EncodeCSV back into lines of fields.
// Quoted values are restored byte for byte, "\r" and "\r\n" included.
func DecodeCSV(data []byte) ([][]string, error) {
	var (
		lines [][]string
		line  []string
		field []byte
	)
	lineNo := 1
	for i := 0; i < len(data); {
		field = field[:0]
		if data[i] == quoteChar {
			i++
			for {
				if i >= len(data) {
					return nil, fmt.Errorf("line %d: unterminated quoted field", lineNo)
				}
				c := data[i]
				if c == quoteChar {
					if i+1 < len(data) && data[i+1] == quoteChar {
						field = append(field, quoteChar)
						i += 2
						continue
					}
					i++
					break
				}
				if c == lineBreak {
					lineNo++
				}
				field = append(field, c)
				i++
			}
			if i < len(data) && data[i] != fieldSeparator && data[i] != lineBreak {
				return nil, fmt.Errorf("line %d: unexpected %q after quoted field", lineNo, data[i])
			}
		} else {
			for i < len(data) && data[i] != fieldSeparator && data[i] != lineBreak {
				if data[i] == quoteChar {
					return nil, fmt.Errorf("line %d: bare quote in unquoted field", lineNo)
				}
				field = append(field, data[i])
				i++
			}
		}
		line = append(line, string(field))

		if i >= len(data) {
			break
		}
		sep := data[i]
		i++
		if sep == lineBreak {
			lines = append(lines, line)
			line = nil
			lineNo++
			continue
		}
		// A separator at the very end opens one last empty field.
		if i == len(data) {
			line = append(line, "")
		}
	}
	if line != nil {
		lines = append(lines, line)
	}
	return lines, nil
}
