package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/russross/blackfriday/v2"
	"golang.org/x/net/html"
)

// MarkdownLoader Markdown 加载器，输出纯文本
type MarkdownLoader struct{}

// NewMarkdownLoader 创建 Markdown 加载器
func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{}
}

// Load 加载 Markdown 内容
func (l *MarkdownLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown content: %w", err)
	}

	// Markdown -> HTML -> 纯文本
	text, err := htmlToText(blackfriday.Run(content))
	if err != nil {
		return nil, err
	}

	return &Document{
		Content:  text,
		Metadata: map[string]string{MetaLoader: "markdown"},
	}, nil
}

// Extensions 返回支持的文件扩展名
func (l *MarkdownLoader) Extensions() []string {
	return []string{".md", ".markdown"}
}

// blockElements 结束时换行的块级元素
var blockElements = map[string]bool{
	"p": true, "br": true, "li": true, "div": true, "pre": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

func htmlToText(doc []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			sb.WriteString("\n")
		}
	}
	walk(root)

	lines := strings.Split(sb.String(), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}
