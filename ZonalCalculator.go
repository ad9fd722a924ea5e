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

// ZonalConfig 分区统计配置
type ZonalConfig struct {
	PolygonCRSWKT         string  // 多边形图层坐标系WKT，为空时视为与栅格一致
	HandleNoData          bool    // false时跳过NoData哨兵剔除，仅剔除NaN/Inf
	MinCoveragePercent    float64 // 最小覆盖度阈值，低于则所有普通统计量置null
	SentinelMagnitude     float64 // NoData极端哨兵判别阈值，0取默认1e10
	NoDataTolerance       float64 // 常规NoData绝对容差，0取默认0.001
	CoverageDataThreshold float64 // 覆盖度"有数据"像素阈值，0取默认1e-7
	Debug                 bool
}

// DefaultZonalConfig 默认配置，跟随用户配置目录下config.xml加载的MainConfig
func DefaultZonalConfig() ZonalConfig {
	return MainConfig.ToZonalConfig()
}

// ZonalFeature 待统计的多边形要素
type ZonalFeature struct {
	ID         int64
	Geometry   orb.Geometry // Polygon或MultiPolygon
	Attributes map[string]string
}

// ZonalResult 统计量名称到可空数值的映射
// 每次调用都包含全部请求的统计量键外加coverage_pct，
// null与0是两种不同的结果，必须原样传递到下游
type ZonalResult map[string]*float64

// ZonalCalculator 单要素分区统计计算器
type ZonalCalculator struct {
	config ZonalConfig
	logger *Logger
}

// NewZonalCalculator 创建计算器
func NewZonalCalculator(config ZonalConfig) *ZonalCalculator {
	logger := NewLogger("ZonalCalculator")
	logger.Debug = config.Debug
	return &ZonalCalculator{config: config, logger: logger}
}

// safePct 把覆盖度清洗为安全的百分比值（非有限→0，保留2位小数）
func safePct(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0.0
	}
	return math.Round(x*100) / 100
}

// nullResult 构造全null结果，coverage_pct键始终存在
func nullResult(statistics []string, coveragePct float64) ZonalResult {
	results := make(ZonalResult, len(statistics)+1)
	for _, stat := range statistics {
		results[stat] = nil
	}
	cov := safePct(coveragePct)
	results[string(StatCoverage)] = &cov
	return results
}

// CalculateForFeature 计算单个多边形在单个栅格上的全部请求统计量
// 任何失败分支都以同形状的结果返回（全部请求键+coverage_pct），
// 错误只进日志，绝不越过本方法边界，避免单个坏要素中断整批处理
func (c *ZonalCalculator) CalculateForFeature(raster *ZonalRaster, feature *ZonalFeature, statistics []string) ZonalResult {
	geom := feature.Geometry

	if GeometryIsEmpty(geom) {
		c.logger.Warnf("要素 %d 几何体为空", feature.ID)
		return nullResult(statistics, 0.0)
	}
	if !GeometryIsValid(geom) {
		c.logger.Warnf("要素 %d 几何体拓扑无效", feature.ID)
		return nullResult(statistics, 0.0)
	}

	// 坐标系不一致时把多边形转换到栅格坐标系
	transformed, err := TransformToRasterCRS(geom, c.config.PolygonCRSWKT, raster.Projection())
	if err != nil {
		c.logger.Errorf("要素 %d: %v", feature.ID, err)
		return nullResult(statistics, 0.0)
	}

	gt := raster.GeoTransform()
	win, ok := ComputePixelWindow(gt, transformed.Bound(), raster.Width(), raster.Height())
	if !ok {
		c.logger.Debugf("要素 %d 像素窗口为空（零重叠）", feature.ID)
		return nullResult(statistics, 0.0)
	}

	data, err := raster.ReadWindow(win)
	if err != nil {
		c.logger.Errorf("要素 %d 栅格读取失败 [%s]: %v", feature.ID, raster.FilePath(), err)
		return nullResult(statistics, 0.0)
	}

	mask, err := BuildPixelMask(transformed, raster.Projection(), gt, win)
	if err != nil {
		c.logger.Errorf("要素 %d 掩膜栅格化失败 [%s]: %v", feature.ID, raster.FilePath(), err)
		return nullResult(statistics, 0.0)
	}

	maskedCount := 0
	for _, m := range mask {
		if m == 1 {
			maskedCount++
		}
	}
	if maskedCount == 0 {
		c.logger.Debugf("要素 %d 掩膜内无像素", feature.ID)
		return nullResult(statistics, 0.0)
	}

	// 覆盖度与"有可用像素"彼此独立：
	// 显式请求或设置了最小覆盖阈值时才走昂贵的逐像素几何求交
	coveragePct := 0.0
	needCoverage := c.config.MinCoveragePercent > 0
	for _, stat := range statistics {
		if StatKind(stat) == StatCoverage {
			needCoverage = true
			break
		}
	}
	if needCoverage {
		coveragePct = coverageFromWindow(transformed, gt, win, data, c.config.CoverageDataThreshold)
	}

	var nodata *float64
	if c.config.HandleNoData {
		nodata = raster.NoDataValue()
	}
	valid := FilterValidPixels(data, mask, nodata, c.config.SentinelMagnitude, c.config.NoDataTolerance)

	if len(valid) == 0 {
		c.logger.Debugf("要素 %d NoData过滤后无有效像素", feature.ID)
		return nullResult(statistics, coveragePct)
	}

	// 覆盖度低于阈值时按"不可信的重叠"处理：统计量全null，覆盖度保留实际值
	if c.config.MinCoveragePercent > 0 && coveragePct < c.config.MinCoveragePercent {
		c.logger.Debugf("要素 %d 覆盖度 %.1f%% 低于阈值 %.1f%%",
			feature.ID, coveragePct, c.config.MinCoveragePercent)
		return nullResult(statistics, coveragePct)
	}

	results := make(ZonalResult, len(statistics)+1)
	cov := safePct(coveragePct)
	results[string(StatCoverage)] = &cov

	for _, stat := range statistics {
		if StatKind(stat) == StatCoverage {
			continue
		}
		results[stat] = ReduceStatistic(stat, valid)
	}
	return results
}
