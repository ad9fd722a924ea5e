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
)

// PixelWindow 栅格像素索引空间中的轴对齐矩形，始终被裁剪到栅格范围内
type PixelWindow struct {
	X      int // 左上角列索引
	Y      int // 左上角行索引
	Width  int
	Height int
}

// Size 窗口像素总数
func (w PixelWindow) Size() int {
	return w.Width * w.Height
}

// ComputePixelWindow 根据多边形包络（栅格坐标系）计算最小像素窗口
// 下界向下取整，上界加1像素余量后取整，避免丢失边界像素
// 返回ok=false表示窗口与栅格无重叠（宽或高<=0），这是正常情况而非错误
func ComputePixelWindow(gt [6]float64, env orb.Bound, rasterXSize, rasterYSize int) (PixelWindow, bool) {
	if gt[1] == 0 || gt[5] == 0 {
		return PixelWindow{}, false
	}

	pxMin := int(math.Floor((env.Min[0] - gt[0]) / gt[1]))
	pxMax := int(math.Floor((env.Max[0]-gt[0])/gt[1])) + 1
	// 北朝上栅格的像素高度为负，Y轴因此反转
	pyMin := int(math.Floor((env.Max[1] - gt[3]) / gt[5]))
	pyMax := int(math.Floor((env.Min[1]-gt[3])/gt[5])) + 1

	if pxMin > pxMax {
		pxMin, pxMax = pxMax, pxMin
	}
	if pyMin > pyMax {
		pyMin, pyMax = pyMax, pyMin
	}

	// 裁剪到栅格边界
	if pxMin < 0 {
		pxMin = 0
	}
	if pyMin < 0 {
		pyMin = 0
	}
	if pxMax > rasterXSize {
		pxMax = rasterXSize
	}
	if pyMax > rasterYSize {
		pyMax = rasterYSize
	}

	width := pxMax - pxMin
	height := pyMax - pyMin
	if width <= 0 || height <= 0 {
		return PixelWindow{}, false
	}

	return PixelWindow{X: pxMin, Y: pyMin, Width: width, Height: height}, true
}

// windowGeoTransform 构建锚定在窗口左上角的子栅格地理变换
// 像素尺寸与旋转项沿用父栅格
func windowGeoTransform(gt [6]float64, win PixelWindow) [6]float64 {
	return [6]float64{
		gt[0] + float64(win.X)*gt[1] + float64(win.Y)*gt[2],
		gt[1],
		gt[2],
		gt[3] + float64(win.X)*gt[4] + float64(win.Y)*gt[5],
		gt[4],
		gt[5],
	}
}

// pixelBound 计算窗口内第(px,py)个像素在地图坐标中的矩形覆盖范围
func pixelBound(gt [6]float64, win PixelWindow, px, py int) orb.Bound {
	x0 := gt[0] + float64(win.X+px)*gt[1]
	y0 := gt[3] + float64(win.Y+py)*gt[5]
	x1 := x0 + gt[1]
	y1 := y0 + gt[5]

	return orb.Bound{
		Min: orb.Point{math.Min(x0, x1), math.Min(y0, y1)},
		Max: orb.Point{math.Max(x0, x1), math.Max(y0, y1)},
	}
}
