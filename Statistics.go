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
	"sort"
)

// StatKind 统计量种类
type StatKind string

const (
	StatMean     StatKind = "mean"
	StatSum      StatKind = "sum"
	StatMin      StatKind = "min"
	StatMax      StatKind = "max"
	StatMedian   StatKind = "median"
	StatMode     StatKind = "mode"
	StatMinority StatKind = "minority"
	StatVariety  StatKind = "variety"
	StatCount    StatKind = "count"
	StatRange    StatKind = "range"
	StatStdDev   StatKind = "stddev"
	StatVariance StatKind = "variance"
	StatCV       StatKind = "cv"
	StatP10      StatKind = "p10"
	StatP25      StatKind = "p25"
	StatP50      StatKind = "p50"
	StatP75      StatKind = "p75"
	StatP90      StatKind = "p90"
	StatP95      StatKind = "p95"
	// StatCoverage 由覆盖度估计器单独提供，不走归约函数
	StatCoverage StatKind = "coverage_pct"
)

type reduceFunc func([]float64) *float64

// statReducers 统计量分发表；未登记的名称一律归约为null，绝不抛出
var statReducers = map[StatKind]reduceFunc{
	StatMean:     func(v []float64) *float64 { return round6Ptr(meanOf(v)) },
	StatSum:      func(v []float64) *float64 { return round6Ptr(sumOf(v)) },
	StatMin:      func(v []float64) *float64 { return round6Ptr(minOf(v)) },
	StatMax:      func(v []float64) *float64 { return round6Ptr(maxOf(v)) },
	StatMedian:   func(v []float64) *float64 { return round6Ptr(percentileOf(v, 50)) },
	StatMode:     reduceMode,
	StatMinority: reduceMinority,
	StatVariety:  reduceVariety,
	StatCount:    func(v []float64) *float64 { n := float64(len(v)); return &n },
	StatRange:    func(v []float64) *float64 { return round6Ptr(maxOf(v) - minOf(v)) },
	StatStdDev:   func(v []float64) *float64 { return round6Ptr(math.Sqrt(varianceOf(v))) },
	StatVariance: func(v []float64) *float64 { return round6Ptr(varianceOf(v)) },
	StatCV:       reduceCV,
	StatP10:      func(v []float64) *float64 { return round6Ptr(percentileOf(v, 10)) },
	StatP25:      func(v []float64) *float64 { return round6Ptr(percentileOf(v, 25)) },
	StatP50:      func(v []float64) *float64 { return round6Ptr(percentileOf(v, 50)) },
	StatP75:      func(v []float64) *float64 { return round6Ptr(percentileOf(v, 75)) },
	StatP90:      func(v []float64) *float64 { return round6Ptr(percentileOf(v, 90)) },
	StatP95:      func(v []float64) *float64 { return round6Ptr(percentileOf(v, 95)) },
}

var statLogger = NewLogger("Statistics")

// ReduceStatistic 对非空有效像素数组计算单个统计量
// 未知名称返回nil并记日志；计算结果为NaN/Inf时同样转为nil
func ReduceStatistic(name string, values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}

	reducer, ok := statReducers[StatKind(name)]
	if !ok {
		statLogger.Warnf("未知统计量: %s", name)
		return nil
	}

	result := reducer(values)
	if result != nil && (math.IsNaN(*result) || math.IsInf(*result, 0)) {
		return nil
	}
	return result
}

// KnownStatistic 名称是否在统计量词汇表中（coverage_pct也算）
func KnownStatistic(name string) bool {
	if StatKind(name) == StatCoverage {
		return true
	}
	_, ok := statReducers[StatKind(name)]
	return ok
}

// round6 四舍五入到小数点后6位
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func round6Ptr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := round6(v)
	return &r
}

func sumOf(values []float64) float64 {
	s := 0.0
	for _, v := range values {
		s += v
	}
	return s
}

func meanOf(values []float64) float64 {
	return sumOf(values) / float64(len(values))
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// varianceOf 总体方差（非样本方差）
func varianceOf(values []float64) float64 {
	mean := meanOf(values)
	s := 0.0
	for _, v := range values {
		d := v - mean
		s += d * d
	}
	return s / float64(len(values))
}

// percentileOf 线性插值百分位数
func percentileOf(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

// uniqueCounts 升序去重值及其出现次数
func uniqueCounts(values []float64) ([]float64, []int) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	unique := make([]float64, 0, len(sorted))
	counts := make([]int, 0, len(sorted))
	for _, v := range sorted {
		if len(unique) > 0 && unique[len(unique)-1] == v {
			counts[len(counts)-1]++
		} else {
			unique = append(unique, v)
			counts = append(counts, 1)
		}
	}
	return unique, counts
}

// reduceMode 出现频次最高的值；并列时取升序去重序列中最先出现的（即最小值）
func reduceMode(values []float64) *float64 {
	unique, counts := uniqueCounts(values)
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return round6Ptr(unique[best])
}

// reduceMinority 出现频次最低的值；只有一个去重值时直接返回它
func reduceMinority(values []float64) *float64 {
	unique, counts := uniqueCounts(values)
	if len(unique) == 0 {
		return nil
	}
	if len(unique) == 1 {
		v := unique[0]
		return &v
	}
	best := 0
	for i, c := range counts {
		if c < counts[best] {
			best = i
		}
	}
	v := unique[best]
	return &v
}

// reduceVariety 去重值的个数（整数）
func reduceVariety(values []float64) *float64 {
	unique, _ := uniqueCounts(values)
	n := float64(len(unique))
	return &n
}

// reduceCV 变异系数 = 总体标准差/均值×100；均值为0或非有限时为null
func reduceCV(values []float64) *float64 {
	mean := meanOf(values)
	if mean == 0 || math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil
	}
	return round6Ptr(math.Sqrt(varianceOf(values)) / mean * 100)
}
