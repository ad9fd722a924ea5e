package Zonify

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func rect(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}}
}

func onesData(n int) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = 1
	}
	return data
}

func TestCoverageFullyInside(t *testing.T) {
	// 多边形完全落在有数据的像素上 -> 100%
	poly := rect(2, 0, 4, 2)
	win := PixelWindow{X: 2, Y: 2, Width: 2, Height: 2}

	pct := coverageFromWindow(poly, testGT, win, onesData(4), 0)
	if math.Abs(pct-100) > 1e-9 {
		t.Errorf("coverage = %v, 期望 100", pct)
	}
}

func TestCoveragePartialOverlap(t *testing.T) {
	// 多边形一半超出栅格数据范围 -> 50%
	poly := rect(2, 0, 6, 2)
	win := PixelWindow{X: 2, Y: 2, Width: 2, Height: 2}

	pct := coverageFromWindow(poly, testGT, win, onesData(4), 0)
	if math.Abs(pct-50) > 1e-9 {
		t.Errorf("coverage = %v, 期望 50", pct)
	}
}

func TestCoverageSkipsNoDataPixels(t *testing.T) {
	// 低于阈值的像素不算"有数据": 窗口里一半像素为0 -> 50%
	poly := rect(2, 0, 4, 2)
	win := PixelWindow{X: 2, Y: 2, Width: 2, Height: 2}
	data := []float64{1, 0, 1, 0}

	pct := coverageFromWindow(poly, testGT, win, data, 0)
	if math.Abs(pct-50) > 1e-9 {
		t.Errorf("coverage = %v, 期望 50", pct)
	}
}

func TestCoverageZeroAreaPolygon(t *testing.T) {
	// 退化多边形返回0而不是错误
	degenerate := orb.Polygon{orb.Ring{{1, 1}, {2, 2}, {1, 1}}}
	win := PixelWindow{X: 0, Y: 0, Width: 4, Height: 4}

	if pct := coverageFromWindow(degenerate, testGT, win, onesData(16), 0); pct != 0 {
		t.Errorf("coverage = %v, 期望 0", pct)
	}
}

func TestCoverageBounds(t *testing.T) {
	// 任意输入下结果都必须落在[0,100]
	polys := []orb.Polygon{
		rect(0, 0, 4, 4),
		rect(-100, -100, 100, 100),
		rect(3.5, 3.5, 20, 20),
	}
	win := PixelWindow{X: 0, Y: 0, Width: 4, Height: 4}

	for i, poly := range polys {
		pct := coverageFromWindow(poly, testGT, win, onesData(16), 0)
		if pct < 0 || pct > 100 {
			t.Errorf("多边形%d: coverage = %v 超出[0,100]", i, pct)
		}
	}
}

func TestCoverageInputGeometryUntouched(t *testing.T) {
	// 逐像素裁剪不得把输入几何体当暂存空间篡改：
	// 跨越多个数据像素的多边形必须累加每个像素的交叠面积,
	// 且计算结束后输入顶点原样保留、重复计算结果一致
	poly := rect(0, 0, 4, 4)
	original := append(orb.Ring{}, poly[0]...)
	win := PixelWindow{X: 0, Y: 0, Width: 4, Height: 4}

	first := coverageFromWindow(poly, testGT, win, onesData(16), 0)
	if math.Abs(first-100) > 1e-9 {
		t.Errorf("coverage = %v, 期望 100 (16个数据像素的交叠面积必须全部累加)", first)
	}

	for i, pt := range poly[0] {
		if pt != original[i] {
			t.Fatalf("输入多边形顶点%d被修改: %v -> %v", i, original[i], pt)
		}
	}

	second := coverageFromWindow(poly, testGT, win, onesData(16), 0)
	if first != second {
		t.Errorf("重复计算结果不一致: %v != %v", first, second)
	}
}

func TestCoverageNonFinitePixels(t *testing.T) {
	poly := rect(2, 0, 4, 2)
	win := PixelWindow{X: 2, Y: 2, Width: 2, Height: 2}
	data := []float64{math.NaN(), math.Inf(1), 1, 1}

	pct := coverageFromWindow(poly, testGT, win, data, 0)
	if math.Abs(pct-50) > 1e-9 {
		t.Errorf("coverage = %v, 期望 50 (NaN/Inf像素不算数据)", pct)
	}
}
