package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Easing Functions (缓动函数)
//
// 缓动函数用于控制动画的速度曲线，使动画看起来更自然。
// 所有函数接受一个进度值 t ∈ [0, 1]，返回缓动后的值（back 系列会短暂超出 [0, 1]）。
//
// 参考：https://easings.net/

// EaseFunc 缓动函数类型
type EaseFunc func(t float64) float64

// ErrUnknownEase 未知的缓动ID
var ErrUnknownEase = errors.New("unknown ease")

// DefaultBackOvershoot back 系列默认回弹系数
const DefaultBackOvershoot = 1.70158

// EaseLinear 线性缓动（无缓动）
// 返回值 = 输入值（匀速运动）
func EaseLinear(t float64) float64 {
	return t
}

// EaseOutCubic 三次方缓出
// 特点：开始快，结束慢（推荐用于"飞向目标"动画）
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// EaseInCubic 三次方缓入
// 特点：开始慢，结束快
// 公式：f(t) = t³
func EaseInCubic(t float64) float64 {
	return t * t * t
}

// EaseInOutCubic 三次方缓入缓出
// 特点：开始慢，中间快，结束慢
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// EaseOutQuad 二次方缓出
// 公式：f(t) = 1 - (1-t)²
func EaseOutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

// EaseInQuad 二次方缓入
// 公式：f(t) = t²
func EaseInQuad(t float64) float64 {
	return t * t
}

// EaseOutExpo 指数缓出
// 特点：开始非常快，结束非常慢
// 公式：f(t) = 1 - 2^(-10t)
func EaseOutExpo(t float64) float64 {
	if t >= 1.0 {
		return 1.0
	}
	return 1 - math.Pow(2, -10*t)
}

// EaseInOutSine 正弦缓入缓出，用于漂浮、呼吸类循环动画
func EaseInOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

// EaseOutBack 回弹缓出：先冲过终点再回落
// overshoot 为回弹系数，1.70158 约为 10% 的超出量
func EaseOutBack(overshoot float64) EaseFunc {
	c3 := overshoot + 1
	return func(t float64) float64 {
		u := t - 1
		return 1 + c3*u*u*u + overshoot*u*u
	}
}

// EaseInBack 回弹缓入：先向后退再加速
func EaseInBack(overshoot float64) EaseFunc {
	c3 := overshoot + 1
	return func(t float64) float64 {
		return c3*t*t*t - overshoot*t*t
	}
}

// Lerp 线性插值
// 在 a 和 b 之间根据 t 插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp 将 v 限制在 [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// powerIn 幂次缓入，power1 = 二次方，power2 = 三次方，以此类推
func powerIn(n float64) EaseFunc {
	return func(t float64) float64 { return math.Pow(t, n) }
}

func powerOut(n float64) EaseFunc {
	return func(t float64) float64 { return 1 - math.Pow(1-t, n) }
}

func powerInOut(n float64) EaseFunc {
	return func(t float64) float64 {
		if t < 0.5 {
			return math.Pow(2, n-1) * math.Pow(t, n)
		}
		return 1 - math.Pow(-2*t+2, n)/2
	}
}

func easeInExpo(t float64) float64 {
	if t <= 0 {
		return 0
	}
	return math.Pow(2, 10*t-10)
}

func easeInOutExpo(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 0.5:
		return math.Pow(2, 20*t-10) / 2
	default:
		return (2 - math.Pow(2, -20*t+10)) / 2
	}
}

// LookupEase 根据缓动ID返回缓动函数
//
// ID 格式为 "family.variant(param)"，例如：
//   - "none" / "linear"
//   - "power1.inOut"、"power2.out"、"power3.out"
//   - "expo.out"
//   - "back.out(1.7)"（括号内为回弹系数，可省略）
//   - "sine.inOut"
//
// 空字符串等价于 "none"。未知ID返回 ErrUnknownEase。
func LookupEase(id string) (EaseFunc, error) {
	id = strings.TrimSpace(id)
	if id == "" || id == "none" || id == "linear" {
		return EaseLinear, nil
	}

	name, param, hasParam, err := splitEaseParam(id)
	if err != nil {
		return nil, err
	}

	family, variant, ok := strings.Cut(name, ".")
	if !ok {
		// gsap 默认变体为 out
		variant = "out"
	}

	switch family {
	case "power0":
		return EaseLinear, nil
	case "power1", "power2", "power3", "power4":
		if hasParam {
			return nil, fmt.Errorf("%w: %q takes no parameter", ErrUnknownEase, id)
		}
		n := float64(family[len(family)-1]-'0') + 1
		switch variant {
		case "in":
			return powerIn(n), nil
		case "out":
			return powerOut(n), nil
		case "inOut":
			return powerInOut(n), nil
		}
	case "quad":
		return LookupEase("power1." + variant)
	case "cubic":
		return LookupEase("power2." + variant)
	case "expo":
		switch variant {
		case "in":
			return easeInExpo, nil
		case "out":
			return EaseOutExpo, nil
		case "inOut":
			return easeInOutExpo, nil
		}
	case "sine":
		switch variant {
		case "in":
			return func(t float64) float64 { return 1 - math.Cos(t*math.Pi/2) }, nil
		case "out":
			return func(t float64) float64 { return math.Sin(t * math.Pi / 2) }, nil
		case "inOut":
			return EaseInOutSine, nil
		}
	case "back":
		overshoot := DefaultBackOvershoot
		if hasParam {
			overshoot = param
		}
		switch variant {
		case "in":
			return EaseInBack(overshoot), nil
		case "out":
			return EaseOutBack(overshoot), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEase, id)
}

// MustEase 与 LookupEase 相同，但未知ID回退为线性缓动
// 仅用于已经校验过的配置
func MustEase(id string) EaseFunc {
	fn, err := LookupEase(id)
	if err != nil {
		return EaseLinear
	}
	return fn
}

func splitEaseParam(id string) (name string, param float64, hasParam bool, err error) {
	open := strings.IndexByte(id, '(')
	if open < 0 {
		return id, 0, false, nil
	}
	if !strings.HasSuffix(id, ")") {
		return "", 0, false, fmt.Errorf("%w: %q", ErrUnknownEase, id)
	}
	raw := strings.TrimSpace(id[open+1 : len(id)-1])
	if raw == "" {
		return id[:open], 0, false, nil
	}
	param, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, false, fmt.Errorf("%w: %q", ErrUnknownEase, id)
	}
	return id[:open], param, true, nil
}
