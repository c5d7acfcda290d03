package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/maximanoob01/hostel-gate-checkk/config"
	"github.com/maximanoob01/hostel-gate-checkk/internal/model"
	"github.com/maximanoob01/hostel-gate-checkk/internal/repository"
)

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// MovementService 出入记录查询与导出接口
type MovementService interface {
	Recent(ctx context.Context) ([]model.MovementLog, error)
	StudentHistory(ctx context.Context, studentID uint) ([]model.MovementLog, error)
	// Export 导出最近的出入记录为 Excel，返回内容与建议文件名
	Export(ctx context.Context) (*bytes.Buffer, string, error)
}

type movementService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMovementService 创建 MovementService 实例
func NewMovementService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) MovementService {
	return &movementService{cfg: cfg, repo: repo, logger: logger}
}

// Recent 最新的 gate.log_limit 条记录
func (s *movementService) Recent(ctx context.Context) ([]model.MovementLog, error) {
	logs, err := s.repo.MovementLog.ListRecent(ctx, s.cfg.Gate.LogLimit)
	if err != nil {
		s.logger.Error("查询出入记录失败", zap.Error(err))
		return nil, err
	}
	return logs, nil
}

func (s *movementService) StudentHistory(ctx context.Context, studentID uint) ([]model.MovementLog, error) {
	return s.repo.MovementLog.ListByStudent(ctx, studentID, s.cfg.Gate.HistoryLimit)
}

// ═══════════════════════════════════════════════════════════
// Export 出入记录导出为 Excel
// ═══════════════════════════════════════════════════════════
//
// 单 Sheet "Movements"，表头：时间 | 学号 | 姓名 | 房间 | 方向 | 记录人 | 备注
// 时间按 gate.timezone 展示

func (s *movementService) Export(ctx context.Context) (*bytes.Buffer, string, error) {
	logs, err := s.Recent(ctx)
	if err != nil {
		return nil, "", err
	}
	loc := s.cfg.Gate.Location()

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Movements"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "B", 16)
	f.SetColWidth(sheetName, "C", "C", 24)
	f.SetColWidth(sheetName, "D", "E", 8)
	f.SetColWidth(sheetName, "F", "F", 18)
	f.SetColWidth(sheetName, "G", "G", 40)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"Timestamp", "Enrollment", "Name", "Room", "Direction", "Recorded by", "Note"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	row := 2
	for _, entry := range logs {
		var enr, name, room, actor string
		if entry.Student != nil {
			enr, name, room = entry.Student.EnrollmentNumber, entry.Student.FullName, entry.Student.RoomNumber
		}
		if entry.RecordedBy != nil {
			actor = entry.RecordedBy.DisplayName()
		}
		values := []interface{}{
			entry.Timestamp.In(loc).Format("2006-01-02 15:04:05"),
			enr, name, room,
			string(entry.Direction),
			actor,
			entry.Note,
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("movement_logs_%s.xlsx", time.Now().In(loc).Format("20060102_1504"))
	return buf, filename, nil
}

// colName 0-based 列号 → Excel 列名
func colName(i int) string {
	name, _ := excelize.ColumnNumberToName(i + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
