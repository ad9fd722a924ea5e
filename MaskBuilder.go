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

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// BuildPixelMask 把多边形按"任意接触"规则烧录成与窗口同尺寸的二值掩膜
// 像素只要被多边形触碰（哪怕部分覆盖）即记为1；面积加权的精确覆盖
// 由GeometricCoverage单独计算。多边形与窗口完全不相交时返回全零掩膜
func BuildPixelMask(g orb.Geometry, projWKT string, gt [6]float64, win PixelWindow) ([]byte, error) {
	return GetGDALPool().ExecuteMask(func() ([]byte, error) {
		return buildPixelMask(g, projWKT, gt, win)
	})
}

func buildPixelMask(g orb.Geometry, projWKT string, gt [6]float64, win PixelWindow) ([]byte, error) {
	InitializeGDAL()

	if win.Width <= 0 || win.Height <= 0 {
		return nil, fmt.Errorf("非法掩膜窗口: %dx%d", win.Width, win.Height)
	}

	// 锚定在窗口左上角的子栅格地理变换
	maskGT := windowGeoTransform(gt, win)
	var cGT [6]C.double
	for i := 0; i < 6; i++ {
		cGT[i] = C.double(maskGT[i])
	}

	var cProj *C.char
	if projWKT != "" {
		cProj = C.CString(projWKT)
		defer C.free(unsafe.Pointer(cProj))
	}

	maskDS := C.createMemRaster(C.int(win.Width), C.int(win.Height), C.GDT_Byte, &cGT[0], cProj)
	if maskDS == nil {
		return nil, fmt.Errorf("创建掩膜数据集失败")
	}
	defer C.GDALClose(maskDS)

	// 临时矢量图层承载待烧录的多边形
	var srs C.OGRSpatialReferenceH
	if projWKT != "" {
		srs = C.spatialRefFromWKT(cProj)
		if srs != nil {
			defer C.OSRDestroySpatialReference(srs)
		}
	}

	memDriverName := C.CString("Memory")
	defer C.free(unsafe.Pointer(memDriverName))

	memDriver := C.OGRGetDriverByName(memDriverName)
	if memDriver == nil {
		return nil, fmt.Errorf("无法获取Memory驱动")
	}

	dsName := C.CString("")
	defer C.free(unsafe.Pointer(dsName))

	vectorDS := C.OGR_Dr_CreateDataSource(memDriver, dsName, nil)
	if vectorDS == nil {
		return nil, fmt.Errorf("创建内存数据源失败")
	}
	defer C.OGR_DS_Destroy(vectorDS)

	layerName := C.CString("mask")
	defer C.free(unsafe.Pointer(layerName))

	layer := C.OGR_DS_CreateLayer(vectorDS, layerName, srs, C.wkbMultiPolygon, nil)
	if layer == nil {
		return nil, fmt.Errorf("创建掩膜图层失败")
	}

	ogrGeom, err := ogrGeometryFromWKT(wkt.MarshalString(g), srs)
	if err != nil {
		return nil, err
	}
	defer C.OGR_G_DestroyGeometry(ogrGeom)

	featureDefn := C.OGR_L_GetLayerDefn(layer)
	feature := C.OGR_F_Create(featureDefn)
	if feature == nil {
		return nil, fmt.Errorf("创建掩膜要素失败")
	}
	C.OGR_F_SetGeometry(feature, ogrGeom)
	if C.OGR_L_CreateFeature(layer, feature) != C.OGRERR_NONE {
		C.OGR_F_Destroy(feature)
		return nil, fmt.Errorf("写入掩膜要素失败")
	}
	C.OGR_F_Destroy(feature)

	if C.rasterizeMaskLayer(maskDS, layer) != C.CE_None {
		return nil, fmt.Errorf("栅格化掩膜失败")
	}

	// 读回掩膜
	maskBand := C.GDALGetRasterBand(maskDS, 1)
	if maskBand == nil {
		return nil, fmt.Errorf("无法获取掩膜波段")
	}

	mask := make([]byte, win.Size())
	readErr := C.GDALRasterIO(maskBand, C.GF_Read,
		0, 0, C.int(win.Width), C.int(win.Height),
		unsafe.Pointer(&mask[0]), C.int(win.Width), C.int(win.Height),
		C.GDT_Byte, 0, 0)
	if readErr != C.CE_None {
		return nil, fmt.Errorf("读取掩膜失败")
	}

	return mask, nil
}
