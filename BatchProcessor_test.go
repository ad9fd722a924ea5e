package Zonify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestStatColumnName(t *testing.T) {
	if got := StatColumnName("dem", "mean"); got != "dem_mean" {
		t.Errorf("列名 = %s, 期望 dem_mean", got)
	}

	longName := strings.Repeat("x", 80)
	got := StatColumnName(longName, "coverage_pct")
	if len(got) != MaxFieldNameLength {
		t.Errorf("超长列名应截断到%d字符, 实际%d", MaxFieldNameLength, len(got))
	}
}

func TestMemorySinkMergesByFeature(t *testing.T) {
	sink := NewMemorySink()

	if err := sink.CreateColumns([]string{"dem_mean", "dem_coverage_pct"}); err != nil {
		t.Fatal(err)
	}
	if err := sink.CreateColumns([]string{"ndvi_mean", "dem_mean"}); err != nil {
		t.Fatal(err)
	}
	if len(sink.Columns()) != 3 {
		t.Fatalf("列数 = %d, 期望 3 (重复列应忽略)", len(sink.Columns()))
	}

	mean := 13.5
	if err := sink.WriteRow(&ResultRow{FeatureID: 1, Values: map[string]*float64{"dem_mean": &mean}}); err != nil {
		t.Fatal(err)
	}
	if err := sink.WriteRow(&ResultRow{FeatureID: 1, Values: map[string]*float64{"ndvi_mean": nil}}); err != nil {
		t.Fatal(err)
	}

	if got := sink.Value(1, "dem_mean"); got == nil || *got != 13.5 {
		t.Errorf("dem_mean = %v, 期望 13.5", got)
	}
	// null与0是不同结果, 必须原样保留
	if got := sink.Value(1, "ndvi_mean"); got != nil {
		t.Errorf("ndvi_mean = %v, 期望 nil", got)
	}
}

func TestExportCSVRendersNullAsEmpty(t *testing.T) {
	sink := NewMemorySink()
	sink.CreateColumns([]string{"dem_mean", "dem_count"})

	mean := 2.5
	sink.WriteRow(&ResultRow{FeatureID: 3, Values: map[string]*float64{
		"dem_mean":  &mean,
		"dem_count": nil,
	}})

	var buf bytes.Buffer
	if err := ExportCSV(&buf, sink); err != nil {
		t.Fatalf("CSV导出失败: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("CSV行数 = %d, 期望 2", len(lines))
	}
	if lines[0] != "feature_id,dem_mean,dem_count" {
		t.Errorf("表头 = %s", lines[0])
	}
	if lines[1] != "3,2.5," {
		t.Errorf("数据行 = %s, 期望 3,2.5,", lines[1])
	}
}

func TestExportJSONPreservesNull(t *testing.T) {
	sink := NewMemorySink()
	sink.CreateColumns([]string{"dem_mean"})
	sink.WriteRow(&ResultRow{FeatureID: 1, Values: map[string]*float64{"dem_mean": nil}})

	var buf bytes.Buffer
	if err := ExportJSON(&buf, sink); err != nil {
		t.Fatalf("JSON导出失败: %v", err)
	}

	var rows []struct {
		FeatureID  int64               `json:"feature_id"`
		Statistics map[string]*float64 `json:"statistics"`
	}
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("解析导出JSON失败: %v", err)
	}
	if len(rows) != 1 || rows[0].FeatureID != 1 {
		t.Fatalf("导出行 = %+v", rows)
	}
	if v, ok := rows[0].Statistics["dem_mean"]; !ok || v != nil {
		t.Errorf("dem_mean应为JSON null")
	}
}

// failingSink 写到限额后持续报错, 模拟落盘失败的输出端
type failingSink struct {
	writes    int
	failAfter int
}

func (s *failingSink) CreateColumns(columns []string) error { return nil }

func (s *failingSink) WriteRow(row *ResultRow) error {
	if s.writes >= s.failAfter {
		return fmt.Errorf("输出端已不可写")
	}
	s.writes++
	return nil
}

func TestProcessRasterStopsAfterWriteError(t *testing.T) {
	// 写入失败后投递端必须停止喂任务并把错误向上传递,
	// 而不是把剩余全部要素算完才返回
	master, err := CreateMemoryRaster(4, 4, testGT, "", onesData(16), nil)
	if err != nil {
		t.Fatalf("创建内存栅格失败: %v", err)
	}
	defer master.Close()

	features := make([]*ZonalFeature, 64)
	for i := range features {
		features[i] = &ZonalFeature{ID: int64(i + 1), Geometry: rect(0.01, 0.01, 3.99, 3.99)}
	}

	p := NewBatchProcessor(BatchConfig{
		Zonal:      DefaultZonalConfig(),
		Statistics: []string{"mean"},
		Workers:    2,
	})

	sink := &failingSink{failAfter: 1}
	written, err := p.processRaster(context.Background(), master, "dem", features, sink, func(int) {})
	if err == nil {
		t.Fatal("写入失败应向上传递错误")
	}
	if written != 1 {
		t.Errorf("成功写入行数 = %d, 期望 1", written)
	}
}

func TestValidateStatistics(t *testing.T) {
	if err := ValidateStatistics([]string{"mean", "p95", "coverage_pct"}); err != nil {
		t.Errorf("合法统计量被拒绝: %v", err)
	}
	if err := ValidateStatistics([]string{"mean", "bogus"}); err == nil {
		t.Error("未知统计量应校验失败")
	}
	if err := ValidateStatistics(nil); err == nil {
		t.Error("空统计量列表应校验失败")
	}
}
