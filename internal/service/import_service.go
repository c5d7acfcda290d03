package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/maximanoob01/hostel-gate-checkk/internal/dto"
	"github.com/maximanoob01/hostel-gate-checkk/internal/model"
	"github.com/maximanoob01/hostel-gate-checkk/internal/repository"
	"github.com/maximanoob01/hostel-gate-checkk/pkg/metrics"
)

// ImportService 学生 CSV 批量导入接口
type ImportService interface {
	ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportResult, error)
}

// importRow CSV 中一行学生数据（已去除首尾空白）
type importRow struct {
	Line             int
	EnrollmentNumber string
	FullName         string
	RoomNumber       string
	Phone            string
}

type importService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(repo *repository.Repository, logger *zap.Logger) ImportService {
	return &importService{repo: repo, logger: logger}
}

var importColumns = []string{"enrollment_number", "full_name", "room_number", "phone"}

// importMaxLen 各列长度上限（字符数），与表结构一致
var importMaxLen = map[string]int{
	"enrollment_number": 32,
	"full_name":         120,
	"room_number":       20,
	"phone":             20,
}

// ═══════════════════════════════════════════════════════════
// ImportCSV 按学号（不区分大小写）新增或覆盖学生
// ═══════════════════════════════════════════════════════════
//
// 首行为表头，多余列忽略，缺失列按空值处理。
// 单行失败（格式错误、非法编码、缺学号或姓名、写库失败）只计数，不中断导入。
// 新建学生默认在校；覆盖时写入 CSV 中的学号原文，在校状态不变。

func (s *importService) ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	result := &dto.ImportResult{}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	index := headerIndex(header)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				// 读取中断（如超出上传大小），已处理的行保留
				return result, fmt.Errorf("读取 CSV 失败: %w", err)
			}
			s.countError(result, parseErr.Line, parseErr)
			continue
		}

		line, _ := reader.FieldPos(0)
		row, err := parseImportRow(record, index, line)
		if err != nil {
			s.countError(result, line, err)
			continue
		}

		created, err := s.upsert(ctx, row)
		if err != nil {
			s.countError(result, line, err)
			continue
		}
		if created {
			result.Created++
			metrics.ImportRows.WithLabelValues("created").Inc()
		} else {
			result.Updated++
			metrics.ImportRows.WithLabelValues("updated").Inc()
		}
	}

	s.logger.Info("CSV 导入完成",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", result.Errors),
	)
	return result, nil
}

func (s *importService) countError(result *dto.ImportResult, line int, err error) {
	result.Errors++
	metrics.ImportRows.WithLabelValues("error").Inc()
	s.logger.Debug("CSV 行导入失败", zap.Int("line", line), zap.Error(err))
}

// upsert 返回 true 表示新建
func (s *importService) upsert(ctx context.Context, row *importRow) (bool, error) {
	existing, err := s.repo.Student.Find(ctx, repository.EnrollmentEquals(row.EnrollmentNumber), 2)
	if err != nil {
		return false, err
	}

	switch len(existing) {
	case 0:
		student := &model.Student{
			EnrollmentNumber: row.EnrollmentNumber,
			FullName:         row.FullName,
			RoomNumber:       row.RoomNumber,
			Phone:            row.Phone,
			IsInside:         true,
		}
		return true, s.repo.Student.Create(ctx, student)
	case 1:
		student := existing[0]
		student.EnrollmentNumber = row.EnrollmentNumber
		student.FullName = row.FullName
		student.RoomNumber = row.RoomNumber
		student.Phone = row.Phone
		return false, s.repo.Student.Update(ctx, &student)
	default:
		return false, fmt.Errorf("学号 %q 匹配到多名学生", row.EnrollmentNumber)
	}
}

// headerIndex 列名 → 下标；容忍 UTF-8 BOM 与首尾空白
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return index
}

func parseImportRow(record []string, index map[string]int, line int) (*importRow, error) {
	values := make(map[string]string, len(importColumns))
	for _, col := range importColumns {
		i, ok := index[col]
		if !ok || i >= len(record) {
			continue
		}
		if !utf8.ValidString(record[i]) {
			return nil, fmt.Errorf("第 %d 行 %s 不是合法 UTF-8", line, col)
		}
		v := strings.TrimSpace(record[i])
		if utf8.RuneCountInString(v) > importMaxLen[col] {
			return nil, fmt.Errorf("第 %d 行 %s 超出长度限制", line, col)
		}
		values[col] = v
	}

	row := &importRow{
		Line:             line,
		EnrollmentNumber: values["enrollment_number"],
		FullName:         values["full_name"],
		RoomNumber:       values["room_number"],
		Phone:            values["phone"],
	}
	if row.EnrollmentNumber == "" || row.FullName == "" {
		return nil, fmt.Errorf("第 %d 行缺少学号或姓名", line)
	}
	return row, nil
}
