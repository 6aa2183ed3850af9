package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Factory Loader 工厂
type Factory struct {
	loaders map[string]Loader
}

// NewFactory 创建 Loader 工厂
func NewFactory() *Factory {
	factory := &Factory{
		loaders: make(map[string]Loader),
	}

	factory.registerLoader(NewTextLoader())
	factory.registerLoader(NewMarkdownLoader())

	return factory
}

func (f *Factory) registerLoader(loader Loader) {
	for _, ext := range loader.Extensions() {
		f.loaders[ext] = loader
	}
}

// LoaderFor 根据文件扩展名选择 Loader
func (f *Factory) LoaderFor(path string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	loader, ok := f.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %q", ext)
	}
	return loader, nil
}

// Extensions 返回所有支持的扩展名
func (f *Factory) Extensions() []string {
	exts := make([]string, 0, len(f.loaders))
	for ext := range f.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// LoadFile 读取文件，元数据中记录路径与不带扩展名的文件名
func (f *Factory) LoadFile(ctx context.Context, path string) (*Document, error) {
	loader, err := f.LoaderFor(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	doc, err := loader.Load(ctx, file)
	if err != nil {
		return nil, err
	}
	doc.Metadata[MetaSourceFile] = path
	doc.Metadata[MetaName] = Stem(path)
	return doc, nil
}

// Stem 不带目录和扩展名的文件名
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
