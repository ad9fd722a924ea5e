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
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/planar"
)

// DefaultCoverageDataThreshold 像素值大于该阈值才视为"有栅格数据"
// 注意：这是对源数据的领域假设，合法数据包含0或负值的栅格会被误判
const DefaultCoverageDataThreshold = 1e-7

// GeometricCoverage 逐像素精确计算多边形与栅格数据像素的几何交叠百分比
// 与掩膜法不同，这里对每个有数据的像素做真实的矩形×多边形裁剪求交面积，
// 代价是O(像素数×多边形复杂度)，应作为显式请求的统计量而非默认项
// 返回值始终落在[0,100]；零面积多边形或完全不相交时返回0
func GeometricCoverage(g orb.Geometry, raster *ZonalRaster, dataThreshold float64) float64 {
	if GeometryIsEmpty(g) {
		return 0.0
	}

	gt := raster.GeoTransform()
	win, ok := ComputePixelWindow(gt, g.Bound(), raster.Width(), raster.Height())
	if !ok {
		return 0.0
	}

	data, err := raster.ReadWindow(win)
	if err != nil {
		return 0.0
	}

	return coverageFromWindow(g, gt, win, data, dataThreshold)
}

// coverageFromWindow 对已读出的窗口像素计算几何覆盖度
func coverageFromWindow(g orb.Geometry, gt [6]float64, win PixelWindow, data []float64, dataThreshold float64) float64 {
	if dataThreshold <= 0 {
		dataThreshold = DefaultCoverageDataThreshold
	}

	polygonArea := math.Abs(planar.Area(g))
	if polygonArea == 0 {
		return 0.0
	}

	totalIntersection := 0.0
	for py := 0; py < win.Height; py++ {
		for px := 0; px < win.Width; px++ {
			v := data[py*win.Width+px]
			if math.IsNaN(v) || math.IsInf(v, 0) || v <= dataThreshold {
				continue
			}

			// 像素矩形与多边形的精确裁剪求交
			// clip会把输入几何体当作暂存空间原地修改，必须逐像素克隆
			clipped := clip.Geometry(pixelBound(gt, win, px, py), orb.Clone(g))
			if clipped == nil {
				continue
			}
			totalIntersection += math.Abs(planar.Area(clipped))
		}
	}

	pct := totalIntersection / polygonArea * 100.0
	return math.Min(100.0, math.Max(0.0, pct))
}
