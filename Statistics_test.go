package Zonify

import (
	"math"
	"testing"
)

func TestReduceBasicStatistics(t *testing.T) {
	values := []float64{11, 12, 15, 16}

	cases := map[string]float64{
		"mean":     13.5,
		"sum":      54,
		"min":      11,
		"max":      16,
		"median":   13.5,
		"count":    4,
		"range":    5,
		"variance": 4.25,
		"stddev":   2.061553, // round(sqrt(4.25), 6)
	}

	for stat, want := range cases {
		got := ReduceStatistic(stat, values)
		if got == nil {
			t.Fatalf("%s 返回nil", stat)
		}
		if *got != want {
			t.Errorf("%s = %v, 期望 %v", stat, *got, want)
		}
	}
}

func TestReduceRounding(t *testing.T) {
	// 7/3 = 2.3333... 四舍五入到6位
	got := ReduceStatistic("mean", []float64{1, 2, 4})
	if got == nil || *got != 2.333333 {
		t.Fatalf("mean = %v, 期望 2.333333", got)
	}
}

func TestModeAndMinorityTieBreak(t *testing.T) {
	// 频次并列时取升序去重序列中更小的值
	mode := ReduceStatistic("mode", []float64{3, 1, 1, 2, 2})
	if mode == nil || *mode != 1 {
		t.Errorf("mode = %v, 期望 1", mode)
	}

	minority := ReduceStatistic("minority", []float64{1, 1, 2, 2, 3})
	if minority == nil || *minority != 3 {
		t.Errorf("minority = %v, 期望 3", minority)
	}

	// 最少频次并列: [1,1,2,2] -> 1
	minorityTie := ReduceStatistic("minority", []float64{1, 1, 2, 2})
	if minorityTie == nil || *minorityTie != 1 {
		t.Errorf("minority并列 = %v, 期望 1", minorityTie)
	}
}

func TestUniformArray(t *testing.T) {
	values := []float64{7, 7, 7, 7, 7}

	for stat, want := range map[string]float64{
		"mode":     7,
		"minority": 7,
		"variety":  1,
		"range":    0,
		"stddev":   0,
	} {
		got := ReduceStatistic(stat, values)
		if got == nil || *got != want {
			t.Errorf("%s = %v, 期望 %v", stat, got, want)
		}
	}
}

func TestPercentileMonotonicity(t *testing.T) {
	values := []float64{5, 1, 9, 3, 7, 2, 8, 4}

	order := []string{"p10", "p25", "p50", "p75", "p90", "p95"}
	prev := math.Inf(-1)
	for _, stat := range order {
		got := ReduceStatistic(stat, values)
		if got == nil {
			t.Fatalf("%s 返回nil", stat)
		}
		if *got < prev {
			t.Errorf("%s = %v 小于前一个百分位 %v", stat, *got, prev)
		}
		prev = *got
	}
}

func TestPercentileInterpolation(t *testing.T) {
	// [1,2,3,4]的p25: rank=0.75 -> 1 + 0.75*(2-1) = 1.75
	got := ReduceStatistic("p25", []float64{4, 3, 2, 1})
	if got == nil || *got != 1.75 {
		t.Errorf("p25 = %v, 期望 1.75", got)
	}
}

func TestCVNullOnZeroMean(t *testing.T) {
	if got := ReduceStatistic("cv", []float64{-1, 1}); got != nil {
		t.Errorf("均值为0时cv应为nil, 实际 %v", *got)
	}

	cv := ReduceStatistic("cv", []float64{11, 12, 15, 16})
	want := round6(2.0615528128088303 / 13.5 * 100)
	if cv == nil || *cv != want {
		t.Errorf("cv = %v, 期望 %v", cv, want)
	}
}

func TestUnknownStatisticIsNull(t *testing.T) {
	if got := ReduceStatistic("bogus_stat", []float64{1, 2, 3}); got != nil {
		t.Errorf("未知统计量应返回nil, 实际 %v", *got)
	}
}

func TestEmptyArrayIsNull(t *testing.T) {
	if got := ReduceStatistic("mean", nil); got != nil {
		t.Errorf("空数组应返回nil, 实际 %v", *got)
	}
}

func TestReduceDeterminism(t *testing.T) {
	values := []float64{0.1, 0.2, 0.30000000004, 17, -3}
	for _, stat := range []string{"mean", "stddev", "p75", "mode", "cv"} {
		a := ReduceStatistic(stat, values)
		b := ReduceStatistic(stat, values)
		if a == nil || b == nil || *a != *b {
			t.Errorf("%s 两次计算结果不一致: %v vs %v", stat, a, b)
		}
	}
}
