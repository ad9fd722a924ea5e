package Zonify

import "testing"

func TestToZonalConfig(t *testing.T) {
	cfg := ZonifyConfig{HandleNoData: true, MinCoveragePercent: 30, Debug: true}

	zc := cfg.ToZonalConfig()
	if !zc.HandleNoData || zc.MinCoveragePercent != 30 || !zc.Debug {
		t.Errorf("配置映射错误: %+v", zc)
	}
	// 配置文件未覆盖的阈值取包默认值
	if zc.SentinelMagnitude != DefaultSentinelMagnitude {
		t.Errorf("SentinelMagnitude = %v", zc.SentinelMagnitude)
	}
	if zc.NoDataTolerance != DefaultNoDataTolerance {
		t.Errorf("NoDataTolerance = %v", zc.NoDataTolerance)
	}
	if zc.CoverageDataThreshold != DefaultCoverageDataThreshold {
		t.Errorf("CoverageDataThreshold = %v", zc.CoverageDataThreshold)
	}
}

func TestDefaultZonalConfigFollowsMainConfig(t *testing.T) {
	saved := MainConfig
	defer func() { MainConfig = saved }()

	MainConfig = ZonifyConfig{HandleNoData: false, MinCoveragePercent: 25}
	zc := DefaultZonalConfig()
	if zc.HandleNoData {
		t.Error("HandleNoData应跟随MainConfig取false")
	}
	if zc.MinCoveragePercent != 25 {
		t.Errorf("MinCoveragePercent = %v, 期望 25", zc.MinCoveragePercent)
	}
}

func TestBatchWorkersFallBackToMainConfig(t *testing.T) {
	saved := MainConfig
	defer func() { MainConfig = saved }()

	MainConfig.Workers = 3
	p := NewBatchProcessor(BatchConfig{Statistics: []string{"mean"}})
	if p.config.Workers != 3 {
		t.Errorf("Workers = %d, 期望取MainConfig的3", p.config.Workers)
	}

	// 显式指定时优先于用户配置
	p = NewBatchProcessor(BatchConfig{Statistics: []string{"mean"}, Workers: 4})
	if p.config.Workers != 4 {
		t.Errorf("Workers = %d, 期望 4", p.config.Workers)
	}
}
