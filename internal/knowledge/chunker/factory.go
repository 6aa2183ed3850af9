package chunker

import (
	"fmt"
)

// Strategy 分块策略
type Strategy string

const (
	StrategyParagraph  Strategy = "paragraph"
	StrategyWordWindow Strategy = "word_window"
)

// Config 分块器配置
type Config struct {
	Strategy Strategy
	Size     int
	Overlap  int
	Counter  TokenCounter
}

// New 按策略创建 Chunker
func New(cfg *Config) (Chunker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var opts []Option
	if cfg.Counter != nil {
		opts = append(opts, WithTokenCounter(cfg.Counter))
	}

	switch cfg.Strategy {
	case StrategyParagraph:
		if cfg.Overlap != 0 {
			return nil, fmt.Errorf("paragraph strategy does not support overlap")
		}
		return NewParagraphChunker(cfg.Size, opts...), nil

	case StrategyWordWindow:
		c, err := NewWordWindowChunker(cfg.Size, cfg.Overlap, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil

	default:
		return nil, fmt.Errorf("unsupported chunk strategy: %s", cfg.Strategy)
	}
}
