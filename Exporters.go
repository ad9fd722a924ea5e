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
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// ExportCSV 把内存结果表导出为CSV，null值渲染为空单元格
func ExportCSV(w io.Writer, sink *MemorySink) error {
	writer := csv.NewWriter(w)

	header := append([]string{"feature_id"}, sink.Columns()...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("写CSV表头失败: %v", err)
	}

	for _, id := range sink.FeatureIDs() {
		record := make([]string, 0, len(header))
		record = append(record, strconv.FormatInt(id, 10))
		for _, col := range sink.Columns() {
			v := sink.Value(id, col)
			if v == nil {
				record = append(record, "")
			} else {
				record = append(record, strconv.FormatFloat(*v, 'f', -1, 64))
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("写CSV行失败: %v", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportJSON 把内存结果表导出为JSON数组，null值保留为JSON null
func ExportJSON(w io.Writer, sink *MemorySink) error {
	type jsonRow struct {
		FeatureID  int64               `json:"feature_id"`
		Statistics map[string]*float64 `json:"statistics"`
	}

	rows := make([]jsonRow, 0, len(sink.FeatureIDs()))
	for _, id := range sink.FeatureIDs() {
		stats := make(map[string]*float64, len(sink.Columns()))
		for _, col := range sink.Columns() {
			stats[col] = sink.Value(id, col)
		}
		rows = append(rows, jsonRow{FeatureID: id, Statistics: stats})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

// ExportSQLite 把内存结果表导出为SQLite属性表
func ExportSQLite(dbPath, tableName string, sink *MemorySink) error {
	if tableName == "" {
		tableName = "zonal_statistics"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("打开SQLite失败: %v", err)
	}
	defer db.Close()

	colDefs := make([]string, 0, len(sink.Columns())+1)
	colDefs = append(colDefs, "feature_id INTEGER PRIMARY KEY")
	for _, col := range sink.Columns() {
		colDefs = append(colDefs, fmt.Sprintf("%s REAL", quoteIdent(col)))
	}

	schema := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdent(tableName), strings.Join(colDefs, ", "))
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("创建SQLite表失败: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("开启事务失败: %v", err)
	}

	insertCols := []string{"feature_id"}
	placeholders := []string{"?"}
	for _, col := range sink.Columns() {
		insertCols = append(insertCols, quoteIdent(col))
		placeholders = append(placeholders, "?")
	}
	insertQuery := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		quoteIdent(tableName),
		strings.Join(insertCols, ", "),
		strings.Join(placeholders, ", "))

	stmt, err := tx.Prepare(insertQuery)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("准备插入语句失败: %v", err)
	}
	defer stmt.Close()

	for _, id := range sink.FeatureIDs() {
		args := make([]interface{}, 0, len(insertCols))
		args = append(args, id)
		for _, col := range sink.Columns() {
			v := sink.Value(id, col)
			if v == nil {
				args = append(args, nil)
			} else {
				args = append(args, *v)
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("插入要素 %d 失败: %v", id, err)
		}
	}

	return tx.Commit()
}
