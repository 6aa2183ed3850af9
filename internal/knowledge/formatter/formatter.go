// Package formatter 将学校记录中的字段值渲染为可读文本
package formatter

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lk2023060901/scholar-ai/internal/knowledge/jsonvalue"
)

const (
	fieldCost     = "cost"
	fieldContacts = "contacts"
	indentUnit    = "  "
)

// Format 按字段名渲染值，cost 与 contacts 使用专用格式
func Format(fieldName string, v jsonvalue.Value) string {
	if obj, ok := v.(jsonvalue.Object); ok {
		switch fieldName {
		case fieldCost:
			return formatCost(obj)
		case fieldContacts:
			return formatContacts(obj)
		}
	}
	return render(v)
}

// Humanize 将 snake_case 键转换为标题格式，如 tuition_fee -> Tuition Fee
func Humanize(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

func render(v jsonvalue.Value) string {
	switch val := v.(type) {
	case jsonvalue.String:
		return string(val)
	case jsonvalue.Object:
		return formatObject(val)
	case jsonvalue.List:
		return formatList(val)
	case jsonvalue.Scalar:
		return val.Literal
	default:
		return ""
	}
}

func formatObject(obj jsonvalue.Object) string {
	lines := make([]string, 0, len(obj))
	for _, m := range obj {
		key := Humanize(m.Key)
		switch m.Value.(type) {
		case jsonvalue.Object, jsonvalue.List:
			nested := render(m.Value)
			if strings.TrimSpace(nested) == "" {
				lines = append(lines, key+":")
				continue
			}
			lines = append(lines, key+":\n"+indent(nested))
		default:
			lines = append(lines, key+": "+render(m.Value))
		}
	}
	return strings.Join(lines, "\n")
}

func formatList(list jsonvalue.List) string {
	if len(list) == 0 {
		return ""
	}

	parts := make([]string, 0, len(list))
	if _, ok := list[0].(jsonvalue.Object); ok {
		for _, item := range list {
			parts = append(parts, render(item))
		}
		return strings.Join(parts, "\n\n")
	}

	for _, item := range list {
		parts = append(parts, render(item))
	}
	return strings.Join(parts, "\n")
}

func formatCost(obj jsonvalue.Object) string {
	parts := make([]string, 0, len(obj))
	for _, m := range obj {
		category := Humanize(m.Key)
		details, ok := m.Value.(jsonvalue.Object)
		if !ok {
			parts = append(parts, category+": "+amount(m.Value))
			continue
		}

		lines := make([]string, 0, len(details)+1)
		lines = append(lines, category+":")
		for _, item := range details {
			lines = append(lines, indentUnit+"- "+Humanize(item.Key)+": "+amount(item.Value))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func formatContacts(obj jsonvalue.Object) string {
	lines := make([]string, 0, len(obj))
	for _, m := range obj {
		key := Humanize(m.Key)
		if nested, ok := m.Value.(jsonvalue.Object); ok {
			lines = append(lines, key+": "+inline(nested))
			continue
		}
		if m.Value.IsEmpty() {
			continue
		}
		lines = append(lines, key+": "+inline(m.Value))
	}
	return strings.Join(lines, "\n")
}

// inline 单行渲染，嵌套对象为 "k: v; k2: v2"
func inline(v jsonvalue.Value) string {
	switch val := v.(type) {
	case jsonvalue.Object:
		pairs := make([]string, 0, len(val))
		for _, m := range val {
			pairs = append(pairs, m.Key+": "+inline(m.Value))
		}
		return strings.Join(pairs, "; ")
	case jsonvalue.List:
		items := make([]string, 0, len(val))
		for _, item := range val {
			items = append(items, inline(item))
		}
		return strings.Join(items, ", ")
	default:
		return render(v)
	}
}

// amount 数字金额加 $ 前缀和千位分隔符，其他值原样输出
func amount(v jsonvalue.Value) string {
	s, ok := v.(jsonvalue.Scalar)
	if !ok || s.Type != jsonvalue.Number {
		return inline(v)
	}
	if s.IsInteger() {
		return "$" + groupDigits(s.Literal)
	}
	return "$" + groupDigits(decimalLiteral(s))
}

// decimalLiteral 小数取最短表示，至少保留一位小数
func decimalLiteral(s jsonvalue.Scalar) string {
	f, err := s.Float()
	if err != nil {
		return s.Literal
	}
	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

// groupDigits 整数部分每三位插入逗号，小数部分不变
func groupDigits(lit string) string {
	sign := ""
	if strings.HasPrefix(lit, "-") {
		sign, lit = "-", lit[1:]
	}
	intPart, frac := lit, ""
	if i := strings.IndexByte(lit, '.'); i >= 0 {
		intPart, frac = lit[:i], lit[i:]
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(frac)
	return b.String()
}

func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indentUnit + line
		}
	}
	return strings.Join(lines, "\n")
}
