package seedfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/satishbabariya/prisma-bulk/runtime/types"
)

type csvReader struct {
	r      *csv.Reader
	close  func() error
	header []string
	line   int
}

func newCSVReader(r io.Reader, closeFn func() error) (*csvReader, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return &csvReader{r: cr, close: closeFn}, nil
	}
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}
	cr.FieldsPerRecord = len(header)

	return &csvReader{r: cr, close: closeFn, header: header, line: 1}, nil
}

// Next converts each field: empty is null, integers, floats and true/false
// are typed, anything else is text
func (r *csvReader) Next() (*types.Attributes, error) {
	if r.header == nil {
		return nil, io.EOF
	}

	record, err := r.r.Read()
	if err == io.EOF {
		return nil, err
	}
	r.line++
	if err != nil {
		return nil, fmt.Errorf("csv line %d: %w", r.line, err)
	}

	attrs := types.NewAttributes()
	for i, field := range record {
		attrs.Set(r.header[i], csvValue(field))
	}
	return attrs, nil
}

func (r *csvReader) Close() error {
	return r.close()
}

func csvValue(field string) types.Value {
	if field == "" {
		return types.Null()
	}
	if i, err := strconv.ParseInt(field, 10, 64); err == nil {
		return types.Int(i)
	}
	if f, err := strconv.ParseFloat(field, 64); err == nil && strings.ContainsAny(field, "0123456789") {
		return types.Float(f)
	}
	switch field {
	case "true", "TRUE":
		return types.Bool(true)
	case "false", "FALSE":
		return types.Bool(false)
	}
	return types.Text(field)
}
