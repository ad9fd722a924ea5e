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
)

// NoData判别的经验常数，针对真实栅格的多种哨兵编码方式
// 可通过ZonalConfig覆盖
const (
	// DefaultSentinelMagnitude 超过该绝对值的NoData视为极端哨兵（如-3.4e38），按精确相等剔除
	DefaultSentinelMagnitude = 1e10
	// DefaultNoDataTolerance 常规NoData的绝对容差，吸收浮点往返噪声
	DefaultNoDataTolerance = 0.001
)

// FilterValidPixels 从窗口像素中筛出掩膜内且有效的值
// 先取mask==1的像素，再按NoData哨兵剔除，最后剔除NaN/Inf
// 结果可以为空数组，这是零重叠或全NoData时的正常状态
func FilterValidPixels(values []float64, mask []byte, nodata *float64, sentinelMagnitude, tolerance float64) []float64 {
	if sentinelMagnitude <= 0 {
		sentinelMagnitude = DefaultSentinelMagnitude
	}
	if tolerance <= 0 {
		tolerance = DefaultNoDataTolerance
	}

	valid := make([]float64, 0, len(values))
	for i, v := range values {
		if i >= len(mask) || mask[i] != 1 {
			continue
		}
		if !isValidPixel(v, nodata, sentinelMagnitude, tolerance) {
			continue
		}
		valid = append(valid, v)
	}
	return valid
}

// isValidPixel 单像素有效性判断
func isValidPixel(v float64, nodata *float64, sentinelMagnitude, tolerance float64) bool {
	if nodata != nil {
		nd := *nodata
		switch {
		case math.IsNaN(nd):
			if math.IsNaN(v) {
				return false
			}
		case math.Abs(nd) > sentinelMagnitude:
			// 极端哨兵值按位相等剔除
			if v == nd {
				return false
			}
		default:
			// 常规哨兵值按绝对容差剔除
			if math.Abs(v-nd) <= tolerance {
				return false
			}
		}
	}
	// 无论哪个分支，NaN/Inf一律剔除
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
