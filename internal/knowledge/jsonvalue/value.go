// Package jsonvalue 提供保序的 JSON 值类型，用于格式化学校记录
package jsonvalue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind 值的种类
type Kind int

const (
	KindString Kind = iota
	KindList
	KindObject
	KindScalar
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	case KindScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// Value 封闭的 JSON 值：String、List、Object 或 Scalar
type Value interface {
	Kind() Kind
	IsEmpty() bool
	sealed()
}

// String 字符串值
type String string

// List 数组值
type List []Value

// Member 对象成员
type Member struct {
	Key   string
	Value Value
}

// Object 对象值，成员保持源文件中的顺序
type Object []Member

// ScalarType 标量的具体类型
type ScalarType int

const (
	Number ScalarType = iota
	Bool
	Null
)

// Scalar 数字、布尔或 null，保留原始 JSON 字面量
type Scalar struct {
	Type    ScalarType
	Literal string
}

func (String) Kind() Kind { return KindString }
func (List) Kind() Kind   { return KindList }
func (Object) Kind() Kind { return KindObject }
func (Scalar) Kind() Kind { return KindScalar }

func (String) sealed() {}
func (List) sealed()   {}
func (Object) sealed() {}
func (Scalar) sealed() {}

func (s String) IsEmpty() bool { return s == "" }
func (l List) IsEmpty() bool   { return len(l) == 0 }
func (o Object) IsEmpty() bool { return len(o) == 0 }

// IsEmpty null、false 与数值 0 视为空
func (s Scalar) IsEmpty() bool {
	switch s.Type {
	case Null:
		return true
	case Bool:
		return s.Literal == "false"
	default:
		f, err := s.Float()
		return err == nil && f == 0
	}
}

// Float 返回数字标量的值
func (s Scalar) Float() (float64, error) {
	if s.Type != Number {
		return 0, fmt.Errorf("scalar %s is not a number", s.Literal)
	}
	return strconv.ParseFloat(s.Literal, 64)
}

// IsInteger 数字字面量不含小数点和指数
func (s Scalar) IsInteger() bool {
	if s.Type != Number {
		return false
	}
	return !strings.ContainsAny(s.Literal, ".eE")
}

// Get 按 key 查找成员，重复 key 时取最后一个
func (o Object) Get(key string) (Value, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Key == key {
			return o[i].Value, true
		}
	}
	return nil, false
}

// Parse 解析 JSON 文本
func Parse(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON document")
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.String:
		return String(r.Str)
	case gjson.Number:
		return Scalar{Type: Number, Literal: r.Raw}
	case gjson.True, gjson.False:
		return Scalar{Type: Bool, Literal: r.Raw}
	case gjson.Null:
		return Scalar{Type: Null, Literal: "null"}
	}

	if r.IsArray() {
		items := List{}
		r.ForEach(func(_, v gjson.Result) bool {
			items = append(items, fromResult(v))
			return true
		})
		return items
	}

	members := Object{}
	r.ForEach(func(k, v gjson.Result) bool {
		members = append(members, Member{Key: k.String(), Value: fromResult(v)})
		return true
	})
	return members
}
