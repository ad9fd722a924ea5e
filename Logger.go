// Logger.go
package Zonify

import (
	"log"
)

// Logger 带名称前缀的简单日志器
type Logger struct {
	name  string
	Debug bool // 是否输出调试日志
}

// NewLogger 创建指定名称的日志器
func NewLogger(name string) *Logger {
	return &Logger{name: name}
}

func (l *Logger) Infof(format string, args ...interface{}) {
	log.Printf("[%s] INFO "+format, append([]interface{}{l.name}, args...)...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	log.Printf("[%s] WARN "+format, append([]interface{}{l.name}, args...)...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	log.Printf("[%s] ERROR "+format, append([]interface{}{l.name}, args...)...)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.Debug {
		log.Printf("[%s] DEBUG "+format, append([]interface{}{l.name}, args...)...)
	}
}
