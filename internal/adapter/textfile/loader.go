package textfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gitlab.com/otp-enc.net/internal/domain"
	"gitlab.com/otp-enc.net/internal/static/errs"
)

// Load reads the first line of the named file, strips the line ending and checks
// that every byte belongs to the cipher alphabet.
func Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s: %w", errs.ErrUsage, path, err)
	}
	defer file.Close()

	text, err := ReadLine(file)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read %s: %w", errs.ErrUsage, path, err)
	}

	if i := domain.FirstInvalidSymbol(text); i >= 0 {
		return nil, fmt.Errorf("%w: bad character encountered in file %s (byte %q at offset %d)",
			errs.ErrInvalidSymbol, path, text[i], i)
	}
	return text, nil
}

// ReadLine returns the first line of r without its trailing "\n" or "\r\n".
func ReadLine(r io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(r).ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return line, nil
}
