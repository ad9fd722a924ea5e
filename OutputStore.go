/*
Copyright (C) 2025 [GrainArc]

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package Zonify

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// MemorySink 内存结果表，按要素ID合并多个栅格的统计列
// 也是CSV/JSON/SQLite导出器的数据源
type MemorySink struct {
	columns []string
	rows    map[int64]map[string]*float64
}

// NewMemorySink 创建内存结果表
func NewMemorySink() *MemorySink {
	return &MemorySink{rows: make(map[int64]map[string]*float64)}
}

// CreateColumns 登记输出列，重复列忽略
func (s *MemorySink) CreateColumns(columns []string) error {
	for _, col := range columns {
		if !containsString(s.columns, col) {
			s.columns = append(s.columns, col)
		}
	}
	return nil
}

// WriteRow 按要素ID合并写入一行
func (s *MemorySink) WriteRow(row *ResultRow) error {
	existing, ok := s.rows[row.FeatureID]
	if !ok {
		existing = make(map[string]*float64, len(row.Values))
		s.rows[row.FeatureID] = existing
	}
	for col, v := range row.Values {
		existing[col] = v
	}
	return nil
}

// Columns 已登记的输出列
func (s *MemorySink) Columns() []string {
	return s.columns
}

// FeatureIDs 升序排列的要素ID
func (s *MemorySink) FeatureIDs() []int64 {
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Value 指定要素、指定列的值；未写入过的列返回nil
func (s *MemorySink) Value(featureID int64, column string) *float64 {
	row, ok := s.rows[featureID]
	if !ok {
		return nil
	}
	return row[column]
}

// GormResultSink 把结果写入关系数据库的属性表
// 沿用惯例：调用方负责打开并传入*gorm.DB，本方只拿底层连接拼SQL
type GormResultSink struct {
	db        *gorm.DB
	tableName string
	created   bool
	columns   map[string]bool
}

// NewGormResultSink 创建数据库结果写入端
func NewGormResultSink(db *gorm.DB, tableName string) (*GormResultSink, error) {
	if db == nil {
		return nil, fmt.Errorf("数据库连接为空")
	}
	if tableName == "" {
		return nil, fmt.Errorf("表名为空")
	}
	return &GormResultSink{
		db:        db,
		tableName: tableName,
		columns:   make(map[string]bool),
	}, nil
}

// quoteIdent 标识符加双引号，内部双引号转义
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CreateColumns 确保属性表与统计列存在
func (s *GormResultSink) CreateColumns(columns []string) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("获取数据库连接失败: %v", err)
	}

	if !s.created {
		createQuery := fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (feature_id BIGINT PRIMARY KEY)",
			quoteIdent(s.tableName))
		if _, err := sqlDB.Exec(createQuery); err != nil {
			return fmt.Errorf("创建属性表失败: %v", err)
		}
		s.created = true
	}

	for _, col := range columns {
		if s.columns[col] {
			continue
		}
		alterQuery := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s DOUBLE PRECISION",
			quoteIdent(s.tableName), quoteIdent(col))
		if _, err := sqlDB.Exec(alterQuery); err != nil {
			return fmt.Errorf("添加统计列 %s 失败: %v", col, err)
		}
		s.columns[col] = true
	}
	return nil
}

// WriteRow 按要素ID插入或更新一行，null值原样落库为NULL
func (s *GormResultSink) WriteRow(row *ResultRow) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("获取数据库连接失败: %v", err)
	}

	cols := make([]string, 0, len(row.Values))
	for col := range row.Values {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	insertCols := []string{"feature_id"}
	placeholders := []string{"?"}
	args := []interface{}{row.FeatureID}
	updates := make([]string, 0, len(cols))

	for _, col := range cols {
		insertCols = append(insertCols, quoteIdent(col))
		placeholders = append(placeholders, "?")
		updates = append(updates, fmt.Sprintf("%s=excluded.%s", quoteIdent(col), quoteIdent(col)))
		v := row.Values[col]
		if v == nil {
			args = append(args, nil)
		} else {
			args = append(args, *v)
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (feature_id) DO UPDATE SET %s",
		quoteIdent(s.tableName),
		strings.Join(insertCols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "))

	if _, err := sqlDB.Exec(query, args...); err != nil {
		return fmt.Errorf("写入属性行失败: %v", err)
	}
	return nil
}
