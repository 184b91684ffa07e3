package frame

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"
)

// arrowLoader reads the columnar formats: Parquet and Feather (Arrow IPC file).
type arrowLoader struct{}

func (arrowLoader) Formats() []string { return []string{"parquet", "feather"} }

func (arrowLoader) Load(ctx context.Context, path string, _ Options) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".feather") {
		return readFeather(f, filepath.Base(path))
	}
	return readParquet(ctx, f, filepath.Base(path))
}

func readParquet(ctx context.Context, f *os.File, name string) (*Frame, error) {
	mem := memory.DefaultAllocator
	tbl, err := pqarrow.ReadTable(ctx, f, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	defer tbl.Release()

	tr := array.NewTableReader(tbl, 4096)
	defer tr.Release()
	var rows [][]string
	for tr.Next() {
		rows = appendRecord(rows, tr.Record())
	}
	return New(name, schemaNames(tbl.Schema()), rows), nil
}

func readFeather(f *os.File, name string) (*Frame, error) {
	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, fmt.Errorf("open feather: %w", err)
	}
	defer r.Close()

	var rows [][]string
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, fmt.Errorf("read feather batch %d: %w", i, err)
		}
		rows = appendRecord(rows, rec)
	}
	return New(name, schemaNames(r.Schema()), rows), nil
}

func schemaNames(s *arrow.Schema) []string {
	names := make([]string, s.NumFields())
	for i, fld := range s.Fields() {
		names[i] = fld.Name
	}
	return names
}

func appendRecord(rows [][]string, rec arrow.Record) [][]string {
	ncols := int(rec.NumCols())
	for i := 0; i < int(rec.NumRows()); i++ {
		row := make([]string, ncols)
		for j := 0; j < ncols; j++ {
			col := rec.Column(j)
			if col.IsNull(i) {
				continue
			}
			row[j] = col.ValueStr(i)
		}
		rows = append(rows, row)
	}
	return rows
}
