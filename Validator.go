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
	"os"
)

// ValidateFeatures 校验多边形要素集是否可以参与批处理
func ValidateFeatures(features []*ZonalFeature) error {
	if len(features) == 0 {
		return fmt.Errorf("多边形图层没有要素")
	}
	return nil
}

// ValidateStatistics 校验请求的统计量名称是否都在词汇表中
func ValidateStatistics(statistics []string) error {
	if len(statistics) == 0 {
		return fmt.Errorf("未选择任何统计量")
	}
	for _, stat := range statistics {
		if !KnownStatistic(stat) {
			return fmt.Errorf("未知统计量: %s", stat)
		}
	}
	return nil
}

// ValidateRasterPaths 校验栅格路径，返回无法打开的栅格列表
// 存在坏栅格不是致命错误，批处理会标记并跳过它们
func ValidateRasterPaths(rasterPaths []string) (invalid []string, err error) {
	if len(rasterPaths) == 0 {
		return nil, fmt.Errorf("未选择任何栅格")
	}

	for _, path := range rasterPaths {
		if _, statErr := os.Stat(path); statErr != nil {
			invalid = append(invalid, path)
			continue
		}
		raster, openErr := OpenZonalRaster(path)
		if openErr != nil {
			invalid = append(invalid, path)
			continue
		}
		raster.Close()
	}
	return invalid, nil
}
