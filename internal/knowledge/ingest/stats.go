package ingest

import (
	"sort"
	"unicode/utf8"

	"github.com/lk2023060901/scholar-ai/internal/knowledge/types"
)

// Stats 分块统计
type Stats struct {
	TotalChunks      int      `json:"total_chunks"`
	UniversityCount  int      `json:"university_count"`
	SectionCount     int      `json:"section_count"`
	FieldCount       int      `json:"field_count"`
	MinContentLength int      `json:"min_content_length"`
	AvgContentLength float64  `json:"avg_content_length"`
	MaxContentLength int      `json:"max_content_length"`
	TotalTokens      int      `json:"total_tokens"`
	Universities     []string `json:"universities"`
	Sections         []string `json:"sections"`
	Fields           []string `json:"fields"`
}

// Analyze 统计分块，长度按字符计算
func Analyze(chunks []types.Chunk) Stats {
	stats := Stats{
		Universities: []string{},
		Sections:     []string{},
		Fields:       []string{},
	}
	if len(chunks) == 0 {
		return stats
	}

	universities := make(map[string]struct{})
	sections := make(map[string]struct{})
	fields := make(map[string]struct{})
	total := 0

	for i, c := range chunks {
		universities[c.UniversityName] = struct{}{}
		sections[c.SectionType] = struct{}{}
		fields[c.FieldName] = struct{}{}

		n := utf8.RuneCountInString(c.Content)
		total += n
		if i == 0 || n < stats.MinContentLength {
			stats.MinContentLength = n
		}
		if n > stats.MaxContentLength {
			stats.MaxContentLength = n
		}
		stats.TotalTokens += c.TokenCount
	}

	stats.TotalChunks = len(chunks)
	stats.AvgContentLength = float64(total) / float64(len(chunks))
	stats.Universities = sortedKeys(universities)
	stats.Sections = sortedKeys(sections)
	stats.Fields = sortedKeys(fields)
	stats.UniversityCount = len(stats.Universities)
	stats.SectionCount = len(stats.Sections)
	stats.FieldCount = len(stats.Fields)
	return stats
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
