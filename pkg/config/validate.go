package config

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/decker502/heartbloom/internal/particle"
	"github.com/decker502/heartbloom/pkg/utils"
)

// ErrInvalidConfig 配置校验失败
var ErrInvalidConfig = errors.New("invalid config")

// ErrUnknownColor 颜色既不是已知名称也不是 #rrggbb
var ErrUnknownColor = errors.New("unknown color")

// ParseColor 解析颜色名称（CSS/SVG 颜色名）或 #rgb / #rrggbb / #rrggbbaa
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// MustColor 与 ParseColor 相同，无法解析时返回白色
// 仅用于已经校验过的配置
func MustColor(s string) color.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		return colornames.White
	}
	return c
}

// validator 收集第一个错误，后续检查直接跳过
type validator struct {
	err error
}

func (v *validator) fail(field, format string, args ...any) {
	if v.err == nil {
		v.err = fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...))
	}
}

func (v *validator) positive(field string, n float64) {
	if n <= 0 {
		v.fail(field, "must be positive, got %v", n)
	}
}

func (v *validator) nonNegative(field string, n float64) {
	if n < 0 {
		v.fail(field, "must not be negative, got %v", n)
	}
}

func (v *validator) fraction(field string, n float64) {
	if !(n >= 0 && n <= 1) {
		v.fail(field, "must be in [0, 1], got %v", n)
	}
}

func (v *validator) smoothing(field string, n float64) {
	if !(n > 0 && n <= 1) {
		v.fail(field, "must be in (0, 1], got %v", n)
	}
}

func (v *validator) rangeValue(field, s string) {
	if _, err := particle.ParseRange(s); err != nil {
		v.fail(field, "%v", err)
	}
}

func (v *validator) ease(field, id string) {
	if _, err := utils.LookupEase(id); err != nil {
		v.fail(field, "%v", err)
	}
}

func (v *validator) color(field, s string) {
	if _, err := ParseColor(s); err != nil {
		v.fail(field, "%v", err)
	}
}

func (v *validator) emitter(field string, e EmitterConfig) {
	v.positive(field+".spawn_interval_ms", float64(e.SpawnIntervalMs))
	v.positive(field+".max_concurrent", float64(e.MaxConcurrent))
	v.rangeValue(field+".travel", e.Travel)
	v.rangeValue(field+".drift", e.Drift)
	if r, err := particle.ParseRange(e.Travel); err == nil && r.Min <= 0 {
		v.fail(field+".travel", "must be positive, got %s", r)
	}
}

func (v *validator) look(field string, l ParticleLook) {
	v.rangeValue(field+".size", l.Size)
	v.rangeValue(field+".opacity", l.Opacity)
	v.rangeValue(field+".spin", l.Spin)
	if len(l.Colors) == 0 {
		v.fail(field+".colors", "at least one color required")
	}
	for i, c := range l.Colors {
		v.color(fmt.Sprintf("%s.colors[%d]", field, i), c)
	}
}

// Validate 校验所有字段，返回第一个错误
func (c *ExperienceConfig) Validate() error {
	v := &validator{}

	v.positive("window.width", float64(c.Window.Width))
	v.positive("window.height", float64(c.Window.Height))
	v.positive("window.tps", float64(c.Window.TPS))
	v.color("window.background", c.Window.Background)

	l := c.Loading
	v.emitter("loading.emitter", l.Emitter)
	v.fraction("loading.bokeh_ratio", l.BokehRatio)
	v.look("loading.heart", l.Heart)
	v.look("loading.bokeh", l.Bokeh)
	v.positive("loading.pulse_scale", l.PulseScale)
	v.positive("loading.pulse_ms", float64(l.PulseMs))
	v.nonNegative("loading.text_delay_ms", float64(l.TextDelayMs))
	v.nonNegative("loading.text_ms", float64(l.TextMs))
	v.nonNegative("loading.reveal_ms", float64(l.RevealMs))
	v.nonNegative("loading.hold_ms", float64(l.HoldMs))
	v.nonNegative("loading.fade_ms", float64(l.FadeMs))
	v.ease("loading.pulse_ease", l.PulseEase)
	v.ease("loading.text_ease", l.TextEase)
	v.ease("loading.reveal_ease", l.RevealEase)
	v.ease("loading.fade_ease", l.FadeEase)
	v.color("loading.heart_color", l.HeartColor)
	v.color("loading.text_color", l.TextColor)

	h := c.Hero
	v.ease("hero.default_ease", h.DefaultEase)
	v.ease("hero.button_ease", h.ButtonEase)
	v.ease("hero.open_ease", h.OpenEase)
	for _, f := range []struct {
		field string
		ms    int
	}{
		{"hero.section_ms", h.SectionMs},
		{"hero.title_ms", h.TitleMs},
		{"hero.title_overlap_ms", h.TitleOverlapMs},
		{"hero.subtext_ms", h.SubtextMs},
		{"hero.subtext_overlap_ms", h.SubtextOverlapMs},
		{"hero.button_ms", h.ButtonMs},
		{"hero.button_overlap_ms", h.ButtonOverlapMs},
		{"hero.open_ms", h.OpenMs},
		{"hero.hover_ms", h.HoverMs},
	} {
		v.nonNegative(f.field, float64(f.ms))
	}
	v.smoothing("hero.parallax_smoothing", h.ParallaxSmoothing)
	v.nonNegative("hero.floating_dots", float64(h.FloatingDots))
	v.rangeValue("hero.dot_size", h.DotSize)
	v.rangeValue("hero.dot_amplitude", h.DotAmplitude)
	v.rangeValue("hero.dot_period", h.DotPeriod)
	v.color("hero.dot_color", h.DotColor)
	v.nonNegative("hero.stars.count", float64(h.Stars.Count))
	v.rangeValue("hero.stars.size", h.Stars.Size)
	v.rangeValue("hero.stars.speed", h.Stars.Speed)
	v.rangeValue("hero.stars.opacity", h.Stars.Opacity)
	v.color("hero.stars.color", h.Stars.Color)
	v.rangeValue("hero.stars.lifetime", h.Stars.Lifetime)
	if r, err := particle.ParseRange(h.Stars.Lifetime); err == nil && r.Min <= 0 {
		v.fail("hero.stars.lifetime", "must be positive, got %s", r)
	}
	v.nonNegative("hero.stars.link_threshold", h.Stars.LinkThreshold)
	v.emitter("hero.meteors", h.Meteors)
	v.positive("hero.magnet_radius", h.MagnetRadius)
	if !(h.MagnetGain > 0 && h.MagnetGain < 1) {
		v.fail("hero.magnet_gain", "must be in (0, 1), got %v", h.MagnetGain)
	}
	v.smoothing("hero.magnet_smoothing", h.MagnetSmoothing)
	v.positive("hero.hover_scale", h.HoverScale)
	v.color("hero.accent_color", h.AccentColor)
	v.color("hero.text_color", h.TextColor)

	lt := c.Letter
	v.nonNegative("letter.card_ms", float64(lt.CardMs))
	v.ease("letter.card_ease", lt.CardEase)
	v.fraction("letter.card_threshold", lt.CardThreshold)
	v.nonNegative("letter.paragraph_ms", float64(lt.ParagraphMs))
	v.ease("letter.paragraph_ease", lt.ParagraphEase)
	v.nonNegative("letter.paragraph_stagger_ms", float64(lt.ParagraphStaggerMs))
	v.fraction("letter.paragraph_threshold", lt.ParagraphThreshold)
	v.emitter("letter.petals", lt.Petals)
	v.look("letter.petal", lt.Petal)
	v.nonNegative("letter.tilt_max_angle", lt.TiltMaxAngle)
	v.smoothing("letter.tilt_smoothing", lt.TiltSmoothing)
	v.color("letter.card_color", lt.CardColor)
	v.color("letter.ink_color", lt.InkColor)

	return v.err
}
