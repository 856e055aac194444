package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/John-Robertt/recipebox/internal/infra/fsx"
)

// Store 提供 <cache_dir>/ 下的文件缓存读写。
//
// 布局（固定）：
// - thumbs/<id>.jpg：裁切后的 16:9 缩略图
// - exports/recipe_<id>.<ext>：后端导出文件
//
// 约束：ReadOnly=true 时只允许读。
type Store struct {
	Root     string
	ReadOnly bool
}

var ErrReadOnly = errors.New("cache: read-only")

func New(root string, readOnly bool) Store {
	return Store{
		Root:     filepath.Clean(strings.TrimSpace(root)),
		ReadOnly: readOnly,
	}
}

// ThumbPath 返回缩略图缓存的绝对路径。
func (s Store) ThumbPath(id int64) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("recipe id 非法：%d", id)
	}
	return filepath.Join(s.Root, "thumbs", thumbName(id)), nil
}

// ExportPath 返回导出文件缓存的绝对路径。
func (s Store) ExportPath(id int64, ext string) (string, error) {
	name, err := exportName(id, ext)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Root, "exports", name), nil
}

func (s Store) ReadThumb(id int64) ([]byte, bool, error) {
	path, err := s.ThumbPath(id)
	if err != nil {
		return nil, false, err
	}
	return fsx.ReadFileIfExists(path)
}

func (s Store) WriteThumb(id int64, jpg []byte) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	if id <= 0 {
		return fmt.Errorf("recipe id 非法：%d", id)
	}
	return fsx.WriteFileAtomic(filepath.Join(s.Root, "thumbs"), thumbName(id), jpg)
}

func (s Store) ReadExport(id int64, ext string) ([]byte, bool, error) {
	path, err := s.ExportPath(id, ext)
	if err != nil {
		return nil, false, err
	}
	return fsx.ReadFileIfExists(path)
}

func (s Store) WriteExport(id int64, ext string, b []byte) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	name, err := exportName(id, ext)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(filepath.Join(s.Root, "exports"), name, b)
}

// Evict 删除某个菜谱的全部缓存文件（菜谱被删除后调用）；文件不存在不算错误。
func (s Store) Evict(id int64, exts ...string) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	paths := make([]string, 0, 1+len(exts))
	p, err := s.ThumbPath(id)
	if err != nil {
		return err
	}
	paths = append(paths, p)
	for _, ext := range exts {
		p, err := s.ExportPath(id, ext)
		if err != nil {
			return err
		}
		paths = append(paths, p)
	}

	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func thumbName(id int64) string {
	return strconv.FormatInt(id, 10) + ".jpg"
}

var extRE = regexp.MustCompile(`^[a-z0-9]{1,8}$`)

func exportName(id int64, ext string) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("recipe id 非法：%d", id)
	}
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	// 最小约束：避免路径穿越。
	if !extRE.MatchString(ext) {
		return "", fmt.Errorf("非法扩展名：%q", ext)
	}
	return "recipe_" + strconv.FormatInt(id, 10) + "." + ext, nil
}
