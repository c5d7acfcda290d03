package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/maximanoob01/hostel-gate-checkk/internal/model"
)

// StudentFilter 学生查询谓词
//
// 每个谓词同时携带 SQL 片段与内存匹配函数，二者语义一致：
// 仓储层用前者下推到数据库，测试替身用后者在内存中过滤。
// 零值表示不过滤。
type StudentFilter struct {
	clause string
	args   []interface{}
	match  func(s *model.Student) bool
}

// EnrollmentEquals 学号不区分大小写完全相等
func EnrollmentEquals(enr string) StudentFilter {
	want := strings.ToLower(enr)
	return StudentFilter{
		clause: "LOWER(enrollment_number) = ?",
		args:   []interface{}{want},
		match: func(s *model.Student) bool {
			return strings.ToLower(s.EnrollmentNumber) == want
		},
	}
}

// EnrollmentContains 学号不区分大小写包含
func EnrollmentContains(q string) StudentFilter {
	return containsFilter("enrollment_number", q, func(s *model.Student) string { return s.EnrollmentNumber })
}

// NameContains 姓名不区分大小写包含
func NameContains(q string) StudentFilter {
	return containsFilter("full_name", q, func(s *model.Student) string { return s.FullName })
}

// PresenceIs 按在校状态过滤
func PresenceIs(inside bool) StudentFilter {
	return StudentFilter{
		clause: "is_inside = ?",
		args:   []interface{}{inside},
		match: func(s *model.Student) bool {
			return s.IsInside == inside
		},
	}
}

// AnyOf 逻辑或；空参数等价于不过滤
func AnyOf(filters ...StudentFilter) StudentFilter {
	return combine(" OR ", filters, func(s *model.Student) bool {
		for _, f := range filters {
			if f.Matches(s) {
				return true
			}
		}
		return false
	})
}

// AllOf 逻辑与
func AllOf(filters ...StudentFilter) StudentFilter {
	return combine(" AND ", filters, func(s *model.Student) bool {
		for _, f := range filters {
			if !f.Matches(s) {
				return false
			}
		}
		return true
	})
}

// Matches 内存匹配；零值过滤器匹配所有学生
func (f StudentFilter) Matches(s *model.Student) bool {
	if f.match == nil {
		return true
	}
	return f.match(s)
}

// SQL 返回 WHERE 片段及参数（供日志与测试断言）
func (f StudentFilter) SQL() (string, []interface{}) {
	return f.clause, f.args
}

func (f StudentFilter) apply(db *gorm.DB) *gorm.DB {
	if f.clause == "" {
		return db
	}
	return db.Where(f.clause, f.args...)
}

func containsFilter(column, q string, field func(s *model.Student) string) StudentFilter {
	needle := strings.ToLower(q)
	return StudentFilter{
		clause: "LOWER(" + column + ") LIKE ? ESCAPE '\\'",
		args:   []interface{}{"%" + escapeLike(needle) + "%"},
		match: func(s *model.Student) bool {
			return strings.Contains(strings.ToLower(field(s)), needle)
		},
	}
}

func combine(op string, filters []StudentFilter, match func(s *model.Student) bool) StudentFilter {
	parts := make([]string, 0, len(filters))
	var args []interface{}
	for _, f := range filters {
		if f.clause == "" {
			continue
		}
		parts = append(parts, "("+f.clause+")")
		args = append(args, f.args...)
	}
	if len(parts) == 0 {
		return StudentFilter{}
	}
	return StudentFilter{
		clause: strings.Join(parts, op),
		args:   args,
		match:  match,
	}
}

// escapeLike 转义 LIKE 通配符，使用户输入按字面匹配
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
