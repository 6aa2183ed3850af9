// Package validation 检查运行环境是否就绪
package validation

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/lk2023060901/scholar-ai/internal/conf"
	"github.com/lk2023060901/scholar-ai/internal/data"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
)

// Store 被检查的向量库集合
type Store interface {
	Collection() string
	HealthCheck(ctx context.Context) error
	CollectionExists(ctx context.Context) (bool, error)
}

// Report 环境检查报告
type Report struct {
	ConfigValid      bool     `json:"config_valid"`
	ConfigError      string   `json:"config_error,omitempty"`
	QdrantConnection bool     `json:"qdrant_connection"`
	QdrantCollection bool     `json:"qdrant_collection"`
	Collection       string   `json:"collection"`
	OverallStatus    bool     `json:"overall_status"`
	Missing          []string `json:"missing"`
}

// Validate 检查配置、Qdrant 连接与集合。
// 集合不存在不影响整体状态，setup 会创建它。
func Validate(ctx context.Context, cfg *conf.Config, store Store) *Report {
	r := &Report{Missing: []string{}}

	if err := cfg.Validate(); err != nil {
		r.ConfigError = err.Error()
		r.Missing = append(r.Missing, cfg.MissingRequirements()...)
		if len(r.Missing) == 0 {
			r.Missing = append(r.Missing, "Fix configuration: "+err.Error())
		}
	} else {
		r.ConfigValid = true
	}

	if store == nil {
		r.Missing = append(r.Missing, "Start the Qdrant server")
	} else {
		r.Collection = store.Collection()
		if err := store.HealthCheck(ctx); err != nil {
			logger.FromContext(ctx).Warn("qdrant health check failed", zap.Error(err))
			r.Missing = append(r.Missing, "Start the Qdrant server")
		} else {
			r.QdrantConnection = true
			exists, err := store.CollectionExists(ctx)
			r.QdrantCollection = err == nil && exists
		}
	}

	r.OverallStatus = r.ConfigValid && r.QdrantConnection
	return r
}

// Check 只建立数据层连接完成检查并打印报告，不需要 OpenAI 凭据
func Check(ctx context.Context, cfg *conf.Config, log *logger.Logger, w io.Writer) (*Report, error) {
	d, cleanup, err := data.NewData(cfg, log)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	report := Validate(ctx, cfg, d.Store)
	report.Print(w)
	return report, nil
}

// Print 输出可读的检查报告
func (r *Report) Print(w io.Writer) {
	var b strings.Builder
	b.WriteString("Scholar AI environment report\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")

	fmt.Fprintf(&b, "\nQdrant:\n  %s connection\n  %s collection '%s'\n",
		mark(r.QdrantConnection), mark(r.QdrantCollection), r.Collection)
	fmt.Fprintf(&b, "\nConfiguration:\n  %s valid\n", mark(r.ConfigValid))
	if r.ConfigError != "" {
		fmt.Fprintf(&b, "    %s\n", r.ConfigError)
	}

	b.WriteString("\nOverall:\n")
	if r.OverallStatus {
		b.WriteString("  [ok] system is ready\n")
	} else {
		b.WriteString("  [x] system is not ready\n")
		for _, m := range r.Missing {
			fmt.Fprintf(&b, "    - %s\n", m)
		}
	}

	_, _ = io.WriteString(w, b.String())
}

func mark(ok bool) string {
	if ok {
		return "[ok]"
	}
	return "[x]"
}
