package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MeasureFunc 返回一行文本的显示宽度（像素）
type MeasureFunc func(s string) float64

// 字形宽度估算系数（相对字号）
const (
	narrowGlyphWidth = 0.55
	spaceGlyphWidth  = 0.3
	wideGlyphWidth   = 1.0
)

// EstimateWidth 按字号估算文本宽度，不依赖具体字体
// 核心布局只使用估算值，保证不同渲染端得到同样的换行和包围盒
func EstimateWidth(size float64) MeasureFunc {
	return func(s string) float64 {
		w := 0.0
		for _, r := range s {
			switch {
			case r == ' ':
				w += spaceGlyphWidth
			case isWide(r):
				w += wideGlyphWidth
			default:
				w += narrowGlyphWidth
			}
		}
		return w * size
	}
}

func isWide(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) ||
		(r >= 0xFF00 && r <= 0xFFEF) || r >= 0x1F300
}

// WrapText 将文本按指定宽度自动换行
// 参数:
//   - textStr: 要换行的文本
//   - measure: 宽度测量函数
//   - maxWidth: 最大宽度（像素）
//
// 换行规则:
//   - 优先在空格处断行
//   - 如果单词太长超过最大宽度，强制断行
//   - 支持中文和英文混合文本
func WrapText(textStr string, measure MeasureFunc, maxWidth float64) []string {
	if textStr == "" || measure == nil || maxWidth <= 0 {
		return []string{textStr}
	}

	if measure(textStr) <= maxWidth {
		return []string{textStr}
	}

	var lines []string
	current := ""

	for len(textStr) > 0 {
		r, size := utf8.DecodeRuneInString(textStr)
		textStr = textStr[size:]
		char := string(r)

		if r == ' ' {
			// 行首空格丢弃
			if current != "" {
				current += char
			}
			continue
		}

		testLine := current + char
		// 当前行为空说明单个字符就超宽，强制放入
		if current == "" || measure(testLine) <= maxWidth {
			current = testLine
			continue
		}

		if i := strings.LastIndexByte(current, ' '); i > 0 {
			lines = append(lines, strings.TrimSpace(current[:i]))
			current = strings.TrimLeft(current[i:], " ") + char
		} else {
			lines = append(lines, strings.TrimSpace(current))
			current = char
		}
	}

	if last := strings.TrimSpace(current); last != "" {
		lines = append(lines, last)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
