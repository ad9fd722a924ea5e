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
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

var MainConfig ZonifyConfig

// ZonifyConfig 默认处理参数，可由用户配置目录下的config.xml覆盖
type ZonifyConfig struct {
	XMLName            xml.Name `xml:"config"`
	HandleNoData       bool     `xml:"handle_nodata"`
	MinCoveragePercent float64  `xml:"min_coverage_percent"`
	Workers            int      `xml:"workers"`
	Debug              bool     `xml:"debug"`
}

// ToZonalConfig 转换为计算器配置，未设置的阈值取包默认值
func (c ZonifyConfig) ToZonalConfig() ZonalConfig {
	return ZonalConfig{
		HandleNoData:          c.HandleNoData,
		MinCoveragePercent:    c.MinCoveragePercent,
		SentinelMagnitude:     DefaultSentinelMagnitude,
		NoDataTolerance:       DefaultNoDataTolerance,
		CoverageDataThreshold: DefaultCoverageDataThreshold,
		Debug:                 c.Debug,
	}
}

func init() {
	MainConfig = ZonifyConfig{HandleNoData: true}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configdata := filepath.Join(configDir, "Zonify", "config.xml")
	xmlFile, err := os.Open(configdata)
	if err != nil {
		return
	}
	defer xmlFile.Close()

	xmlDecoder := xml.NewDecoder(xmlFile)
	err = xmlDecoder.Decode(&MainConfig)
	if err != nil {
		fmt.Println("Error  decoding  XML:", err)
		return
	}
}
