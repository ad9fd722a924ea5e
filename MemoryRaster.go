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

/*
#include "osgeo_utils.h"
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// CreateMemoryRaster 创建内存栅格数据集（MEM驱动），values按行优先排列
// 主要用于测试与临时计算；nodata为nil时不声明NoData值
func CreateMemoryRaster(width, height int, gt [6]float64, projWKT string, values []float64, nodata *float64) (*ZonalRaster, error) {
	InitializeGDAL()

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("非法栅格尺寸: %dx%d", width, height)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("像素数量不匹配: 期望%d, 实际%d", width*height, len(values))
	}

	var cGT [6]C.double
	for i := 0; i < 6; i++ {
		cGT[i] = C.double(gt[i])
	}

	var cProj *C.char
	if projWKT != "" {
		cProj = C.CString(projWKT)
		defer C.free(unsafe.Pointer(cProj))
	}

	ds := C.createMemRaster(C.int(width), C.int(height), C.GDT_Float64, &cGT[0], cProj)
	if ds == nil {
		return nil, fmt.Errorf("创建内存栅格失败")
	}

	band := C.GDALGetRasterBand(ds, 1)
	if band == nil {
		C.GDALClose(ds)
		return nil, fmt.Errorf("无法获取内存栅格波段")
	}

	if nodata != nil {
		C.GDALSetRasterNoDataValue(band, C.double(*nodata))
	}

	buf := make([]C.double, len(values))
	for i, v := range values {
		buf[i] = C.double(v)
	}

	err := C.GDALRasterIO(band, C.GF_Write,
		0, 0, C.int(width), C.int(height),
		unsafe.Pointer(&buf[0]), C.int(width), C.int(height),
		C.GDT_Float64, 0, 0)
	if err != C.CE_None {
		C.GDALClose(ds)
		return nil, fmt.Errorf("写入内存栅格数据失败")
	}

	return newZonalRaster(ds, ""), nil
}
