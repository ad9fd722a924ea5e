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
	"errors"
	"fmt"
	"unsafe"
)

// ErrReadWindow 栅格子窗口读取失败（I/O错误），区别于零重叠的空窗口
var ErrReadWindow = errors.New("读取栅格窗口失败")

// ZonalRaster 只读栅格数据集句柄
// 一个句柄只能在单个goroutine中使用；并行处理时请通过Clone为每个工作者
// 打开独立句柄，而不是对每个要素重新打开数据集
type ZonalRaster struct {
	dataset      C.GDALDatasetH
	filePath     string
	width        int
	height       int
	geoTransform [6]float64
	projection   string
	noData       *float64
}

// OpenZonalRaster 以只读方式打开栅格，并缓存尺寸、地理变换、投影与NoData
func OpenZonalRaster(rasterPath string) (*ZonalRaster, error) {
	InitializeGDAL()

	cPath := C.CString(rasterPath)
	defer C.free(unsafe.Pointer(cPath))

	dataset := C.GDALOpen(cPath, C.GA_ReadOnly)
	if dataset == nil {
		return nil, fmt.Errorf("无法打开栅格: %s", rasterPath)
	}

	return newZonalRaster(dataset, rasterPath), nil
}

// newZonalRaster 从已打开的数据集句柄构建ZonalRaster
func newZonalRaster(dataset C.GDALDatasetH, rasterPath string) *ZonalRaster {
	r := &ZonalRaster{
		dataset:  dataset,
		filePath: rasterPath,
		width:    int(C.GDALGetRasterXSize(dataset)),
		height:   int(C.GDALGetRasterYSize(dataset)),
	}

	var gt [6]C.double
	if C.GDALGetGeoTransform(dataset, &gt[0]) == C.CE_None {
		for i := 0; i < 6; i++ {
			r.geoTransform[i] = float64(gt[i])
		}
	} else {
		// GDAL默认单位变换
		r.geoTransform = [6]float64{0, 1, 0, 0, 0, 1}
	}

	r.projection = C.GoString(C.GDALGetProjectionRef(dataset))

	var hasNoData C.int
	nd := float64(C.bandNoDataValue(dataset, 1, &hasNoData))
	if hasNoData != 0 {
		r.noData = &nd
	}
	return r
}

// Clone 重新打开同一文件，供并行工作者独享句柄
func (r *ZonalRaster) Clone() (*ZonalRaster, error) {
	if r.filePath == "" {
		return nil, fmt.Errorf("内存数据集无法克隆")
	}
	return OpenZonalRaster(r.filePath)
}

// Close 释放数据集
func (r *ZonalRaster) Close() {
	if r.dataset != nil {
		C.GDALClose(r.dataset)
		r.dataset = nil
	}
}

// FilePath 栅格文件路径
func (r *ZonalRaster) FilePath() string {
	return r.filePath
}

// Width 栅格列数
func (r *ZonalRaster) Width() int {
	return r.width
}

// Height 栅格行数
func (r *ZonalRaster) Height() int {
	return r.height
}

// GeoTransform 六参数仿射地理变换
func (r *ZonalRaster) GeoTransform() [6]float64 {
	return r.geoTransform
}

// Projection 投影WKT，可能为空
func (r *ZonalRaster) Projection() string {
	return r.projection
}

// NoDataValue 第1波段声明的NoData哨兵值，未声明时返回nil
func (r *ZonalRaster) NoDataValue() *float64 {
	return r.noData
}

// ReadWindow 读取第1波段指定子窗口的像素值（按行优先展开）
func (r *ZonalRaster) ReadWindow(win PixelWindow) ([]float64, error) {
	if r.dataset == nil {
		return nil, fmt.Errorf("数据集已关闭")
	}
	if win.Width <= 0 || win.Height <= 0 {
		return nil, fmt.Errorf("%w: 窗口尺寸非法 %dx%d", ErrReadWindow, win.Width, win.Height)
	}

	band := C.GDALGetRasterBand(r.dataset, 1)
	if band == nil {
		return nil, fmt.Errorf("%w: 无法获取第1波段", ErrReadWindow)
	}

	buf := make([]C.double, win.Size())
	err := C.GDALRasterIO(band, C.GF_Read,
		C.int(win.X), C.int(win.Y), C.int(win.Width), C.int(win.Height),
		unsafe.Pointer(&buf[0]), C.int(win.Width), C.int(win.Height),
		C.GDT_Float64, 0, 0)
	if err != C.CE_None {
		return nil, fmt.Errorf("%w: %s", ErrReadWindow, r.filePath)
	}

	values := make([]float64, len(buf))
	for i, v := range buf {
		values[i] = float64(v)
	}
	return values, nil
}
