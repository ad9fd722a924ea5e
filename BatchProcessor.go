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
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxFieldNameLength 输出字段名长度上限（PostgreSQL标识符限制）
const MaxFieldNameLength = 63

// ResultRow 单个要素在单个栅格上的统计结果行
type ResultRow struct {
	FeatureID int64
	Values    map[string]*float64 // 完整列名 -> 可空值
}

// ResultSink 结果写入端。批处理器保证只有单个goroutine调用写入方法，
// 实现方无需自行加锁
type ResultSink interface {
	CreateColumns(columns []string) error
	WriteRow(row *ResultRow) error
}

// BatchProgressCallback 批处理进度回调
type BatchProgressCallback func(processed, total int, message string)

// StatColumnName 输出列命名: {栅格名}_{统计量}，超长时截断到63字符
func StatColumnName(rasterName, stat string) string {
	name := rasterName + "_" + stat
	if len(name) > MaxFieldNameLength {
		name = name[:MaxFieldNameLength]
	}
	return name
}

// rasterBaseName 取不含扩展名的文件基名作为栅格名
func rasterBaseName(rasterPath string) string {
	base := filepath.Base(rasterPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// BatchConfig 批处理配置
type BatchConfig struct {
	Zonal      ZonalConfig
	Statistics []string // 请求的统计量名称
	Workers    int      // 0时按CPU核心数取默认
}

// BatchReport 批处理运行报告
type BatchReport struct {
	RunID         string
	ProcessedRows int
	FailedRasters []string // 打不开的栅格被标记后跳过，批处理继续
	Elapsed       time.Duration
}

// BatchProcessor 栅格×要素批处理器
// 每个栅格在整个要素循环中只打开一次；要素在固定大小的工作者池中
// 并行计算，每个工作者持有独立的数据集句柄，结果由单写入者合并进sink
type BatchProcessor struct {
	config BatchConfig
	logger *Logger
}

// NewBatchProcessor 创建批处理器
// 未指定工作者数时依次取用户配置、CPU核心数
func NewBatchProcessor(config BatchConfig) *BatchProcessor {
	if config.Workers <= 0 {
		config.Workers = MainConfig.Workers
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.Workers < 2 {
		config.Workers = 2
	}
	if config.Workers > 8 {
		config.Workers = 8 // 限制最大工作者数，避免GDAL资源竞争
	}

	logger := NewLogger("BatchProcessor")
	logger.Debug = config.Zonal.Debug
	return &BatchProcessor{config: config, logger: logger}
}

// Run 对每个栅格×每个要素执行完整的分区统计流水线
// 取消只在要素之间生效，不会打断像素循环中途
func (p *BatchProcessor) Run(ctx context.Context, rasterPaths []string, features []*ZonalFeature, sink ResultSink, progress BatchProgressCallback) (*BatchReport, error) {
	if len(p.config.Statistics) == 0 {
		return nil, fmt.Errorf("未请求任何统计量")
	}
	if sink == nil {
		return nil, fmt.Errorf("结果写入端为空")
	}

	report := &BatchReport{RunID: uuid.New().String()}
	start := time.Now()
	total := len(rasterPaths) * len(features)
	processed := 0

	p.logger.Infof("批处理开始 run=%s: %d个栅格 × %d个要素, %d个工作者",
		report.RunID, len(rasterPaths), len(features), p.config.Workers)

	for _, rasterPath := range rasterPaths {
		select {
		case <-ctx.Done():
			report.Elapsed = time.Since(start)
			return report, ctx.Err()
		default:
		}

		rasterName := rasterBaseName(rasterPath)

		// 整个要素循环只打开一次，句柄只读共享元数据
		master, err := OpenZonalRaster(rasterPath)
		if err != nil {
			p.logger.Errorf("栅格打开失败，跳过: %s (%v)", rasterPath, err)
			report.FailedRasters = append(report.FailedRasters, rasterPath)
			processed += len(features)
			continue
		}

		columns := make([]string, 0, len(p.config.Statistics)+1)
		for _, stat := range p.config.Statistics {
			columns = append(columns, StatColumnName(rasterName, stat))
		}
		covColumn := StatColumnName(rasterName, string(StatCoverage))
		if !containsString(columns, covColumn) {
			columns = append(columns, covColumn)
		}
		if err := sink.CreateColumns(columns); err != nil {
			master.Close()
			report.Elapsed = time.Since(start)
			return report, fmt.Errorf("创建输出列失败: %w", err)
		}

		n, err := p.processRaster(ctx, master, rasterName, features, sink, func(done int) {
			if progress != nil {
				progress(processed+done, total, fmt.Sprintf("处理 %s", rasterName))
			}
		})
		master.Close()
		report.ProcessedRows += n
		processed += len(features)

		if err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}
	}

	report.Elapsed = time.Since(start)
	p.logger.Infof("批处理完成 run=%s: 写入%d行, 失败栅格%d个, 耗时%v",
		report.RunID, report.ProcessedRows, len(report.FailedRasters), report.Elapsed)
	return report, nil
}

// processRaster 单个栅格对全部要素的并行扇出
func (p *BatchProcessor) processRaster(ctx context.Context, master *ZonalRaster, rasterName string, features []*ZonalFeature, sink ResultSink, onDone func(int)) (int, error) {
	tasks := make(chan *ZonalFeature, p.config.Workers)
	rows := make(chan *ResultRow, p.config.Workers)
	stop := make(chan struct{}) // 写入失败后通知投递端停止喂任务

	var wg sync.WaitGroup
	for i := 0; i < p.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// GDAL数据集句柄不支持跨goroutine并发读，
			// 每个工作者克隆独立句柄并绑定OS线程
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			worker, err := master.Clone()
			if err != nil {
				p.logger.Errorf("工作者句柄克隆失败: %v", err)
				worker = nil
			}
			if worker != nil {
				defer worker.Close()
			}

			calc := NewZonalCalculator(p.config.Zonal)
			for feature := range tasks {
				var result ZonalResult
				if worker != nil {
					result = calc.CalculateForFeature(worker, feature, p.config.Statistics)
				} else {
					result = nullResult(p.config.Statistics, 0.0)
				}

				values := make(map[string]*float64, len(result))
				for stat, v := range result {
					values[StatColumnName(rasterName, stat)] = v
				}
				rows <- &ResultRow{FeatureID: feature.ID, Values: values}
			}
		}()
	}

	// 投递任务；取消只发生在要素之间
	go func() {
		defer close(tasks)
		for _, feature := range features {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case tasks <- feature:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(rows)
	}()

	// 单写入者合并，避免对输出属性表的并发修改
	written := 0
	var writeErr error
	for row := range rows {
		if writeErr != nil {
			continue // 排空通道，等工作者退出
		}
		if err := sink.WriteRow(row); err != nil {
			writeErr = fmt.Errorf("写入结果行失败: %w", err)
			close(stop)
			continue
		}
		written++
		onDone(written)
	}

	if writeErr != nil {
		return written, writeErr
	}
	return written, ctx.Err()
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
