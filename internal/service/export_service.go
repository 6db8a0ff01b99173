package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入
type ExportService interface {
	// ExportErrorLogs 将指定状态的错误日志导出为 Excel
	ExportErrorLogs(ctx context.Context, status string) (*bytes.Buffer, string, error)
}

type exportService struct {
	errorLogs ErrorLogService
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(errorLogs ErrorLogService, logger *zap.Logger) ExportService {
	return &exportService{errorLogs: errorLogs, logger: logger}
}

var errorLogHeaders = []string{
	"ID", "Type", "Severity", "Method", "Path", "Message", "Status",
	"Created", "Created By", "Resolved", "Resolved By",
}

// ────────────────────── ExportErrorLogs ──────────────────────
//
// 单 Sheet，第一行为标题，第二行为表头，之后每条日志一行
// 堆栈不导出，按 id 回查详情

func (s *exportService) ExportErrorLogs(ctx context.Context, status string) (*bytes.Buffer, string, error) {
	logs, err := s.errorLogs.List(ctx, status)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Error Logs"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "D", 18)
	f.SetColWidth(sheet, "E", "E", 32)
	f.SetColWidth(sheet, "F", "F", 48)
	f.SetColWidth(sheet, "G", "K", 20)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	last := colName(len(errorLogHeaders) - 1)
	f.SetCellValue(sheet, "A1", fmt.Sprintf("Error logs (%s)", status))
	f.MergeCell(sheet, "A1", cell(last, 1))
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	// 表头
	for i, h := range errorLogHeaders {
		f.SetCellValue(sheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheet, "A2", cell(last, 2), headerStyle)

	row := 3
	for _, l := range logs {
		values := []any{
			l.ID(),
			string(l.Type()),
			string(l.Severity()),
			string(l.HTTPMethod()),
			l.RequestPath(),
			l.ErrorMessage(),
			string(l.Status()),
			l.CreatedDate().Format(time.RFC3339),
			optionalID(l.CreatedByID()),
			optionalTime(l.ResolvedDate()),
			optionalID(l.ResolvedByID()),
		}
		for i, v := range values {
			f.SetCellValue(sheet, cell(colName(i), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("error_logs_%s_%s.xlsx", status, time.Now().UTC().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func optionalID(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}
