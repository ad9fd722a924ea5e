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

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// ErrTransform 坐标转换失败，调用方应视为"无可提取像素"而不是中断批处理
var ErrTransform = errors.New("坐标转换失败")

// ogrGeometryFromWKT 从WKT构建OGR几何体，调用方负责销毁
func ogrGeometryFromWKT(wktStr string, srs C.OGRSpatialReferenceH) (C.OGRGeometryH, error) {
	cWKT := C.CString(wktStr)
	defer C.free(unsafe.Pointer(cWKT))

	var geom C.OGRGeometryH
	wktPtr := cWKT
	if C.OGR_G_CreateFromWkt(&wktPtr, srs, &geom) != C.OGRERR_NONE || geom == nil {
		return nil, fmt.Errorf("无法从WKT创建OGR几何体")
	}
	return geom, nil
}

// ogrGeometryToOrb 把OGR几何体导出为orb几何体
func ogrGeometryToOrb(geom C.OGRGeometryH) (orb.Geometry, error) {
	var cWKT *C.char
	if C.OGR_G_ExportToWkt(geom, &cWKT) != C.OGRERR_NONE || cWKT == nil {
		return nil, fmt.Errorf("导出WKT失败")
	}
	defer C.CPLFree(unsafe.Pointer(cWKT))

	g, err := wkt.Unmarshal(C.GoString(cWKT))
	if err != nil {
		return nil, fmt.Errorf("解析WKT失败: %v", err)
	}
	return g, nil
}

// GeometryIsEmpty 判断多边形几何体是否为空（无坐标）
func GeometryIsEmpty(g orb.Geometry) bool {
	switch geom := g.(type) {
	case nil:
		return true
	case orb.Polygon:
		return len(geom) == 0 || len(geom[0]) == 0
	case orb.MultiPolygon:
		if len(geom) == 0 {
			return true
		}
		for _, p := range geom {
			if len(p) > 0 && len(p[0]) > 0 {
				return false
			}
		}
		return true
	default:
		return true // 非面状几何体一律按空处理
	}
}

// GeometryIsValid 通过GEOS检查几何体拓扑有效性
func GeometryIsValid(g orb.Geometry) bool {
	if GeometryIsEmpty(g) {
		return false
	}

	InitializeGDAL()
	ogrGeom, err := ogrGeometryFromWKT(wkt.MarshalString(g), nil)
	if err != nil {
		return false
	}
	defer C.OGR_G_DestroyGeometry(ogrGeom)

	return C.OGR_G_IsValid(ogrGeom) != 0
}

// SameSpatialRef 判断两个WKT描述的空间参考是否等价
// 任一方未定义时视为等价（按约定跳过转换）
func SameSpatialRef(srcWKT, dstWKT string) bool {
	if srcWKT == "" || dstWKT == "" {
		return true
	}
	if srcWKT == dstWKT {
		return true
	}

	InitializeGDAL()

	cSrc := C.CString(srcWKT)
	defer C.free(unsafe.Pointer(cSrc))
	srcSRS := C.spatialRefFromWKT(cSrc)
	if srcSRS == nil {
		return false
	}
	defer C.OSRDestroySpatialReference(srcSRS)

	cDst := C.CString(dstWKT)
	defer C.free(unsafe.Pointer(cDst))
	dstSRS := C.spatialRefFromWKT(cDst)
	if dstSRS == nil {
		return false
	}
	defer C.OSRDestroySpatialReference(dstSRS)

	return C.OSRIsSame(srcSRS, dstSRS) != 0
}

// TransformToRasterCRS 将多边形从矢量图层坐标系精确转换到栅格坐标系
// 两个坐标系等价（或任一未定义）时原样返回输入几何体
func TransformToRasterCRS(g orb.Geometry, srcWKT, dstWKT string) (orb.Geometry, error) {
	if srcWKT == "" || dstWKT == "" || SameSpatialRef(srcWKT, dstWKT) {
		return g, nil
	}

	InitializeGDAL()

	cSrc := C.CString(srcWKT)
	defer C.free(unsafe.Pointer(cSrc))
	srcSRS := C.spatialRefFromWKT(cSrc)
	if srcSRS == nil {
		return nil, fmt.Errorf("%w: 无法构建源空间参考", ErrTransform)
	}
	defer C.OSRDestroySpatialReference(srcSRS)

	cDst := C.CString(dstWKT)
	defer C.free(unsafe.Pointer(cDst))
	dstSRS := C.spatialRefFromWKT(cDst)
	if dstSRS == nil {
		return nil, fmt.Errorf("%w: 无法从栅格投影构建目标空间参考", ErrTransform)
	}
	defer C.OSRDestroySpatialReference(dstSRS)

	// 保持传统GIS轴序（x=东向, y=北向）
	C.OSRSetAxisMappingStrategy(srcSRS, C.OAMS_TRADITIONAL_GIS_ORDER)
	C.OSRSetAxisMappingStrategy(dstSRS, C.OAMS_TRADITIONAL_GIS_ORDER)

	transform := C.OCTNewCoordinateTransformation(srcSRS, dstSRS)
	if transform == nil {
		return nil, fmt.Errorf("%w: 无法创建坐标转换", ErrTransform)
	}
	defer C.OCTDestroyCoordinateTransformation(transform)

	ogrGeom, err := ogrGeometryFromWKT(wkt.MarshalString(g), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransform, err)
	}
	defer C.OGR_G_DestroyGeometry(ogrGeom)

	if C.OGR_G_Transform(ogrGeom, transform) != C.OGRERR_NONE {
		return nil, fmt.Errorf("%w: 顶点转换返回错误码", ErrTransform)
	}

	transformed, err := ogrGeometryToOrb(ogrGeom)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransform, err)
	}
	return transformed, nil
}
