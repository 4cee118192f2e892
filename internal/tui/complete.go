package tui

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

const maxCandidates = 5

// complete 用沙箱中可见的名字补全 input 末尾的标识符。
// 返回补全后的文本与候选（按得分排序，最多 maxCandidates 个）。
func complete(input string, names []string) (string, []string) {
	start := len(input)
	for start > 0 && isIdent(input[start-1]) {
		start--
	}
	token := input[start:]
	// 字段名不在全局表里，不补全。
	if token == "" || start > 0 && input[start-1] == '.' {
		return input, nil
	}

	results := fuzzy.Find(token, names)
	sort.SliceStable(results, func(i, j int) bool {
		// 前缀匹配优先，其次按得分。
		pi := strings.HasPrefix(results[i].Str, token)
		pj := strings.HasPrefix(results[j].Str, token)
		if pi != pj {
			return pi
		}
		if results[i].Score == results[j].Score {
			return results[i].Str < results[j].Str
		}
		return results[i].Score > results[j].Score
	})
	if len(results) == 0 {
		return input, nil
	}
	candidates := make([]string, 0, maxCandidates)
	for i, r := range results {
		if i == maxCandidates {
			break
		}
		candidates = append(candidates, r.Str)
	}
	return input[:start] + candidates[0], candidates
}

func isIdent(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
