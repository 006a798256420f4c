// Package particle 解析粒子配置中使用的数值字符串
//
// 配置项统一使用字符串，支持以下格式：
//   - 固定值: "1500"
//   - 范围:   "[0.7 0.9]"（生成时在范围内随机取值）
//   - 关键帧: "0,0 0.1,1 1,0"（time,value 对，time 为归一化生命周期）
//   - 插值:   "0,1 EaseOut 1,0"（关键帧 + 插值模式）
package particle

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// ErrInvalidValue 数值字符串格式错误
var ErrInvalidValue = errors.New("invalid particle value")

// Keyframe represents a single keyframe in an animation curve.
// Used for animating particle properties over their lifetime (e.g., opacity).
type Keyframe struct {
	Time  float64 // Normalized time (0-1)
	Value float64 // Value at this keyframe
}

// Range 数值范围 [Min, Max]，固定值时 Min == Max
type Range struct {
	Min float64
	Max float64
}

// Fixed 创建固定值范围
func Fixed(v float64) Range {
	return Range{Min: v, Max: v}
}

// Sample 在范围内均匀随机取值
func (r Range) Sample(rng *rand.Rand) float64 {
	if r.Min >= r.Max {
		return r.Min
	}
	if rng == nil {
		return r.Min + rand.Float64()*(r.Max-r.Min)
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// String 返回配置格式的字符串
func (r Range) String() string {
	if r.Min == r.Max {
		return strconv.FormatFloat(r.Min, 'g', -1, 64)
	}
	return fmt.Sprintf("[%s %s]",
		strconv.FormatFloat(r.Min, 'g', -1, 64),
		strconv.FormatFloat(r.Max, 'g', -1, 64))
}

// interpolationKeywords 关键帧字符串中允许出现的插值模式
var interpolationKeywords = []string{"EaseInOut", "EaseIn", "EaseOut", "Linear"}

// ParseRange 严格解析固定值或范围格式
// "[a b]" 中 a > b 时自动交换
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, fmt.Errorf("%w: empty string", ErrInvalidValue)
	}

	if !strings.HasPrefix(s, "[") {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidValue, s)
		}
		return Fixed(v), nil
	}

	if !strings.HasSuffix(s, "]") {
		return Range{}, fmt.Errorf("%w: unterminated range %q", ErrInvalidValue, s)
	}
	parts := strings.Fields(strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"))
	switch len(parts) {
	case 1:
		// 单值格式: "[value]" - 作为固定值处理
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidValue, s)
		}
		return Fixed(v), nil
	case 2:
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidValue, s)
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		return Range{Min: lo, Max: hi}, nil
	default:
		return Range{}, fmt.Errorf("%w: range needs 1 or 2 numbers, got %q", ErrInvalidValue, s)
	}
}

// ParseKeyframes 严格解析关键帧格式 "t,v t,v ..."，可夹带一个插值关键字
// 关键帧时间必须单调不减
func ParseKeyframes(s string) ([]Keyframe, string, error) {
	s = strings.TrimSpace(s)
	interpolation := ""
	for _, keyword := range interpolationKeywords {
		if strings.Contains(s, keyword) {
			interpolation = keyword
			s = strings.TrimSpace(strings.ReplaceAll(s, keyword, ""))
			break
		}
	}

	parts := strings.Fields(s)
	if len(parts) == 0 {
		return nil, "", fmt.Errorf("%w: no keyframes", ErrInvalidValue)
	}

	keyframes := make([]Keyframe, 0, len(parts))
	for _, part := range parts {
		pair := strings.Split(part, ",")
		if len(pair) != 2 {
			return nil, "", fmt.Errorf("%w: keyframe %q", ErrInvalidValue, part)
		}
		tm, err1 := strconv.ParseFloat(pair[0], 64)
		val, err2 := strconv.ParseFloat(pair[1], 64)
		if err1 != nil || err2 != nil {
			return nil, "", fmt.Errorf("%w: keyframe %q", ErrInvalidValue, part)
		}
		if n := len(keyframes); n > 0 && tm < keyframes[n-1].Time {
			return nil, "", fmt.Errorf("%w: keyframe times must not decrease (%q)", ErrInvalidValue, s)
		}
		keyframes = append(keyframes, Keyframe{Time: tm, Value: val})
	}
	return keyframes, interpolation, nil
}

// EvaluateKeyframes calculates the interpolated value at time t (0-1)
// using the provided keyframes and interpolation mode.
func EvaluateKeyframes(keyframes []Keyframe, t float64, interpolation string) float64 {
	if len(keyframes) == 0 {
		return 0
	}
	if len(keyframes) == 1 {
		return keyframes[0].Value
	}

	// Clamp t to [0, 1]
	t = math.Max(0, math.Min(1, t))

	if t <= keyframes[0].Time {
		return keyframes[0].Value
	}

	for i := 0; i < len(keyframes)-1; i++ {
		k0 := keyframes[i]
		k1 := keyframes[i+1]
		if t < k0.Time || t > k1.Time {
			continue
		}

		duration := k1.Time - k0.Time
		if duration <= 0 {
			return k1.Value
		}
		ratio := (t - k0.Time) / duration

		switch interpolation {
		case "EaseIn":
			ratio = ratio * ratio
		case "EaseOut":
			ratio = 1 - (1-ratio)*(1-ratio)
		case "EaseInOut":
			ratio = ratio * ratio * (3 - 2*ratio)
		}
		return k0.Value + ratio*(k1.Value-k0.Value)
	}

	// If t is beyond the last keyframe, return the last value
	return keyframes[len(keyframes)-1].Value
}

