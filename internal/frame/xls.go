package frame

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
)

type xlsLoader struct{}

func (xlsLoader) Formats() []string { return []string{"xls"} }

func (xlsLoader) Load(_ context.Context, path string, opt Options) (*Frame, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, errNoSheets
	}
	sheet := wb.GetSheet(0)
	if opt.Sheet != "" {
		sheet = nil
		var avail []string
		for i := 0; i < wb.NumSheets(); i++ {
			s := wb.GetSheet(i)
			if s == nil {
				continue
			}
			avail = append(avail, s.Name)
			if strings.EqualFold(s.Name, opt.Sheet) {
				sheet = s
				break
			}
		}
		if sheet == nil {
			return nil, fmt.Errorf("sheet %q not found (available: %s)", opt.Sheet, strings.Join(avail, ", "))
		}
	}
	if sheet == nil {
		return nil, errNoSheets
	}

	var grid [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = strings.TrimSpace(row.Col(j))
		}
		if isBlankRow(cells) {
			continue
		}
		grid = append(grid, cells)
	}
	if len(grid) == 0 {
		return New(filepath.Base(path), nil, nil), nil
	}
	return New(filepath.Base(path), grid[0], grid[1:]), nil
}
