package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrScriptNotFound = errors.New("script not found")

// ResolveScript 找到 script(name) 要加载的文件。依次尝试：name 本身、各个
// 允许的根目录下的 name、可执行文件所在目录下的 name。配置了 roots 时，
// 结果必须落在某个根目录内。
func ResolveScript(name string, roots []string, binDir string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrScriptNotFound)
	}
	roots = cleanRoots(roots)

	candidates := []string{name}
	if !filepath.IsAbs(name) {
		for _, root := range roots {
			candidates = append(candidates, filepath.Join(root, name))
		}
		if binDir != "" {
			candidates = append(candidates, filepath.Join(binDir, name))
		}
	}

	outside := false
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if !withinRoots(abs, roots) {
			outside = true
			continue
		}
		return abs, nil
	}
	if outside {
		return "", fmt.Errorf("%w: %s is outside allowed roots", ErrScriptNotFound, name)
	}
	return "", fmt.Errorf("%w: %s", ErrScriptNotFound, name)
}

func cleanRoots(roots []string) []string {
	seen := make(map[string]struct{})
	cleaned := make([]string, 0, len(roots))
	for _, r := range roots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		abs = filepath.Clean(abs)
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		cleaned = append(cleaned, abs)
	}
	return cleaned
}

// withinRoots 在 roots 为空时总是成立。
func withinRoots(path string, roots []string) bool {
	if len(roots) == 0 {
		return true
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, r := range roots {
		rel, err := filepath.Rel(r, abs)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}
