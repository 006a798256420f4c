package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ExperienceConfig 整个体验的配置
//
// Default 返回内置默认值；Load 读取 YAML 文件覆盖其中出现的字段，未出现的字段保持默认。
// 数值范围使用粒子配置的写法："[min max]" 或单个数值。
type ExperienceConfig struct {
	Window  WindowConfig  `yaml:"window"`
	Loading LoadingConfig `yaml:"loading"`
	Hero    HeroConfig    `yaml:"hero"`
	Letter  LetterConfig  `yaml:"letter"`
}

// WindowConfig 窗口配置
type WindowConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	TPS        int    `yaml:"tps"`        // 逻辑帧率
	Background string `yaml:"background"` // 背景色
}

// ParticleLook 粒子外观
type ParticleLook struct {
	Glyph   string   `yaml:"glyph"`
	Size    string   `yaml:"size"`    // 像素
	Opacity string   `yaml:"opacity"` // 0-1
	Spin    string   `yaml:"spin"`    // 整个路程的旋转角度
	Colors  []string `yaml:"colors"`
}

// EmitterConfig 粒子发射配置
type EmitterConfig struct {
	SpawnIntervalMs int    `yaml:"spawn_interval_ms"`
	MaxConcurrent   int    `yaml:"max_concurrent"`
	Travel          string `yaml:"travel"` // 路程时长（秒）
	Drift           string `yaml:"drift"`  // 水平漂移（像素）
}

// SpawnInterval 发射间隔
func (e EmitterConfig) SpawnInterval() time.Duration {
	return Millis(e.SpawnIntervalMs)
}

// LoadingConfig 加载页
type LoadingConfig struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`

	Emitter    EmitterConfig `yaml:"emitter"`
	BokehRatio float64       `yaml:"bokeh_ratio"` // 光斑占比
	Heart      ParticleLook  `yaml:"heart"`
	Bokeh      ParticleLook  `yaml:"bokeh"`

	PulseScale   float64 `yaml:"pulse_scale"`
	PulseMs      int     `yaml:"pulse_ms"`
	PulseEase    string  `yaml:"pulse_ease"`
	TextDelayMs  int     `yaml:"text_delay_ms"`
	TextMs       int     `yaml:"text_ms"`
	TextEase     string  `yaml:"text_ease"`
	RevealMs     int     `yaml:"reveal_ms"`
	RevealEase   string  `yaml:"reveal_ease"`
	HoldMs       int     `yaml:"hold_ms"`
	FadeMs       int     `yaml:"fade_ms"`
	FadeEase     string  `yaml:"fade_ease"`
	HeartColor   string  `yaml:"heart_color"`
	TextColor    string  `yaml:"text_color"`
	PulseMaxSize float64 `yaml:"pulse_max_size"`
}

// StarConfig 星空（漂移 + 星座连线）
type StarConfig struct {
	Count         int     `yaml:"count"`
	Size          string  `yaml:"size"`
	Speed         string  `yaml:"speed"` // 像素/秒
	Opacity       string  `yaml:"opacity"`
	Color         string  `yaml:"color"`
	Lifetime      string  `yaml:"lifetime"` // 秒，淡入淡出一次的时长
	LinkThreshold float64 `yaml:"link_threshold"`
}

// HeroConfig 首屏
type HeroConfig struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Button   string `yaml:"button"`

	DefaultEase      string `yaml:"default_ease"`
	SectionMs        int    `yaml:"section_ms"`
	TitleMs          int    `yaml:"title_ms"`
	TitleOverlapMs   int    `yaml:"title_overlap_ms"`
	SubtextMs        int    `yaml:"subtext_ms"`
	SubtextOverlapMs int    `yaml:"subtext_overlap_ms"`
	ButtonMs         int    `yaml:"button_ms"`
	ButtonOverlapMs  int    `yaml:"button_overlap_ms"`
	ButtonEase       string `yaml:"button_ease"`
	OpenMs           int    `yaml:"open_ms"`
	OpenEase         string `yaml:"open_ease"`

	ParallaxGain      float64 `yaml:"parallax_gain"`
	ParallaxSmoothing float64 `yaml:"parallax_smoothing"`

	FloatingDots int    `yaml:"floating_dots"`
	DotSize      string `yaml:"dot_size"`
	DotAmplitude string `yaml:"dot_amplitude"`
	DotPeriod    string `yaml:"dot_period"` // 秒
	DotColor     string `yaml:"dot_color"`

	Stars   StarConfig    `yaml:"stars"`
	Meteors EmitterConfig `yaml:"meteors"`

	MagnetRadius    float64 `yaml:"magnet_radius"`
	MagnetGain      float64 `yaml:"magnet_gain"`
	MagnetSmoothing float64 `yaml:"magnet_smoothing"`
	HoverScale      float64 `yaml:"hover_scale"`
	HoverMs         int     `yaml:"hover_ms"`

	AccentColor string `yaml:"accent_color"`
	TextColor   string `yaml:"text_color"`
}

// LetterConfig 信件页
type LetterConfig struct {
	Heading    string   `yaml:"heading"`
	Paragraphs []string `yaml:"paragraphs"`
	Signature  string   `yaml:"signature"`

	CardMs             int     `yaml:"card_ms"`
	CardEase           string  `yaml:"card_ease"`
	CardThreshold      float64 `yaml:"card_threshold"`
	ParagraphMs        int     `yaml:"paragraph_ms"`
	ParagraphEase      string  `yaml:"paragraph_ease"`
	ParagraphStaggerMs int     `yaml:"paragraph_stagger_ms"`
	ParagraphThreshold float64 `yaml:"paragraph_threshold"`

	Petals EmitterConfig `yaml:"petals"`
	Petal  ParticleLook  `yaml:"petal"`

	TiltMaxAngle  float64 `yaml:"tilt_max_angle"`
	TiltSmoothing float64 `yaml:"tilt_smoothing"`

	CardColor string `yaml:"card_color"`
	InkColor  string `yaml:"ink_color"`
}

// Millis 毫秒数转换为 time.Duration
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Load 读取 YAML 配置并覆盖默认值，然后校验
func Load(path string) (*ExperienceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 数据并覆盖默认值
func Parse(data []byte) (*ExperienceConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
