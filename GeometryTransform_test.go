package Zonify

import (
	"testing"

	"github.com/paulmach/orb"
)

const wgs84WKT = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433]]`

func TestTransformNoOpSameCRS(t *testing.T) {
	poly := rect(1, 1, 3, 3)

	got, err := TransformToRasterCRS(poly, wgs84WKT, wgs84WKT)
	if err != nil {
		t.Fatalf("同坐标系转换失败: %v", err)
	}

	// 顶点必须逐个相同
	gotPoly, ok := got.(orb.Polygon)
	if !ok {
		t.Fatalf("返回类型 %T, 期望 orb.Polygon", got)
	}
	for i, pt := range poly[0] {
		if gotPoly[0][i] != pt {
			t.Errorf("顶点%d被改动: %v -> %v", i, pt, gotPoly[0][i])
		}
	}
}

func TestTransformNoOpUndefinedCRS(t *testing.T) {
	poly := rect(1, 1, 3, 3)

	// 任一坐标系未定义时按约定跳过转换
	for _, pair := range [][2]string{{"", wgs84WKT}, {wgs84WKT, ""}, {"", ""}} {
		got, err := TransformToRasterCRS(poly, pair[0], pair[1])
		if err != nil {
			t.Fatalf("未定义坐标系应为no-op, 实际错误: %v", err)
		}
		if _, ok := got.(orb.Polygon); !ok {
			t.Fatalf("返回类型 %T", got)
		}
	}
}

func TestSameSpatialRef(t *testing.T) {
	if !SameSpatialRef(wgs84WKT, wgs84WKT) {
		t.Error("相同WKT应判定为同一坐标系")
	}
	if !SameSpatialRef("", wgs84WKT) || !SameSpatialRef(wgs84WKT, "") {
		t.Error("未定义坐标系应视为等价")
	}
}

func TestGeometryIsEmpty(t *testing.T) {
	if !GeometryIsEmpty(orb.Polygon{}) {
		t.Error("空Polygon应判空")
	}
	if !GeometryIsEmpty(orb.MultiPolygon{}) {
		t.Error("空MultiPolygon应判空")
	}
	if GeometryIsEmpty(rect(0, 0, 1, 1)) {
		t.Error("非空多边形不应判空")
	}
	// 非面状几何体一律按空处理
	if !GeometryIsEmpty(orb.Point{1, 2}) {
		t.Error("点几何体应判空")
	}
}

func TestGeometryIsValid(t *testing.T) {
	if !GeometryIsValid(rect(0, 0, 2, 2)) {
		t.Error("矩形应有效")
	}

	bowtie := orb.Polygon{orb.Ring{{0, 0}, {2, 2}, {2, 0}, {0, 2}, {0, 0}}}
	if GeometryIsValid(bowtie) {
		t.Error("自相交多边形应无效")
	}
}
