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

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadFeaturesFromGeoJSON 从GeoJSON文件加载多边形要素
// 非面状几何体被跳过并记日志；要素ID按读取顺序编号
func LoadFeaturesFromGeoJSON(geojsonPath string) ([]*ZonalFeature, error) {
	data, err := os.ReadFile(geojsonPath)
	if err != nil {
		return nil, fmt.Errorf("读取GeoJSON失败: %v", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("解析GeoJSON失败: %v", err)
	}

	logger := NewLogger("FeatureLoader")
	features := make([]*ZonalFeature, 0, len(fc.Features))

	for i, f := range fc.Features {
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			logger.Warnf("要素 %d 不是面状几何体，已跳过", i)
			continue
		}

		attrs := make(map[string]string, len(f.Properties))
		for k, v := range f.Properties {
			attrs[k] = fmt.Sprint(v)
		}

		features = append(features, &ZonalFeature{
			ID:         int64(i),
			Geometry:   f.Geometry,
			Attributes: attrs,
		})
	}

	return features, nil
}
