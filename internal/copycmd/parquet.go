package copycmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

var ErrMissingColumn = errors.New("column not found")

// ReadColumn returns the values of a single top-level column in row order.
// Null values are skipped.
func ReadColumn(path, column string) (_ []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	leaf, ok := pf.Schema().Lookup(column)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", path, ErrMissingColumn, column)
	}

	result := make([]string, 0, pf.NumRows())

	for _, rg := range pf.RowGroups() {
		values, err := readColumnChunk(rg.ColumnChunks()[leaf.ColumnIndex])
		if err != nil {
			return nil, fmt.Errorf("%s: column %q: %w", path, column, err)
		}

		result = append(result, values...)
	}

	return result, nil
}

func readColumnChunk(chunk parquet.ColumnChunk) (_ []string, err error) {
	pages := chunk.Pages()

	defer func() {
		err = errors.Join(err, pages.Close())
	}()

	var result []string

	buf := make([]parquet.Value, 1024)

	for {
		page, err := pages.ReadPage()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		reader := page.Values()

		for {
			n, err := reader.ReadValues(buf)

			for _, v := range buf[:n] {
				if !v.IsNull() {
					result = append(result, v.String())
				}
			}

			if err == io.EOF {
				break
			} else if err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}
