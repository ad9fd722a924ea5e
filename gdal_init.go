// gdal_init.go
package Zonify

/*
#cgo pkg-config: gdal
#include "osgeo_utils.h"
*/
import "C"

import (
	"sync"
)

var gdalInitOnce sync.Once

// InitializeGDAL 注册GDAL/OGR全部驱动（幂等，可重复调用）
func InitializeGDAL() {
	gdalInitOnce.Do(func() {
		C.GDALAllRegister()
		C.OGRRegisterAll()
	})
}
