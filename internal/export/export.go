package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format 是本地生成的下载格式（与后端的 json/pdf 导出无关）。
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	PDF  Format = "pdf"
)

const sheet = "Sheet1"

// UnsupportedError 表示某类数据不支持该格式。
type UnsupportedError struct {
	What   string
	Format string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s 不支持导出为 %q", e.What, e.Format)
}

// ParseFormat 解析格式名（大小写不敏感，允许带前导 '.'）。
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case CSV, XLSX, PDF:
		return f, nil
	default:
		return "", &UnsupportedError{What: "export", Format: s}
	}
}

// FormatFromPath 按文件扩展名推断格式。
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("无法从 %q 推断导出格式（需要 .csv/.xlsx/.pdf 扩展名）", path)
	}
	return ParseFormat(ext)
}

// ContentType 返回下载时使用的 MIME 类型。
func ContentType(f Format) string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case PDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

func writeTable(w io.Writer, f Format, header []string, rows [][]string) error {
	switch f {
	case CSV:
		return writeCSV(w, header, rows)
	case XLSX:
		return writeXLSX(w, header, rows)
	default:
		return &UnsupportedError{What: "table", Format: string(f)}
	}
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", cells(header)); err != nil {
		return err
	}
	for i, r := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(addr, cells(r)); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

func cells(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
