package config

// 默认窗口尺寸
const (
	DefaultWindowWidth  = 1280
	DefaultWindowHeight = 720
	DefaultTPS          = 60
)

// Default 返回内置默认配置
func Default() *ExperienceConfig {
	return &ExperienceConfig{
		Window: WindowConfig{
			Width:      DefaultWindowWidth,
			Height:     DefaultWindowHeight,
			Title:      "Heartbloom",
			TPS:        DefaultTPS,
			Background: "#1a0b14",
		},
		Loading: LoadingConfig{
			Title:    "Something special is blooming",
			Subtitle: "just for you",
			Emitter: EmitterConfig{
				SpawnIntervalMs: 300,
				MaxConcurrent:   40,
				Travel:          "[6 12]",
				Drift:           "[-150 150]",
			},
			BokehRatio: 0.3,
			Heart: ParticleLook{
				Glyph:   "heart",
				Size:    "[10 25]",
				Opacity: "[0.2 0.7]",
				Spin:    "[0 720]",
				Colors:  []string{"crimson", "hotpink", "#ff4d6d"},
			},
			Bokeh: ParticleLook{
				Glyph:   "bokeh",
				Size:    "[20 70]",
				Opacity: "[0 0.2]",
				Spin:    "0",
				Colors:  []string{"white"},
			},
			PulseScale:   1.25,
			PulseMs:      800,
			PulseEase:    "power1.inOut",
			TextDelayMs:  500,
			TextMs:       1800,
			TextEase:     "expo.out",
			RevealMs:     1500,
			RevealEase:   "back.out(1.7)",
			HoldMs:       3500,
			FadeMs:       2000,
			FadeEase:     "power1.out",
			HeartColor:   "#ff4d6d",
			TextColor:    "mistyrose",
			PulseMaxSize: 96,
		},
		Hero: HeroConfig{
			Title:    "For You",
			Subtitle: "A little universe of moments I keep close",
			Button:   "Open my heart",

			DefaultEase:      "power3.out",
			SectionMs:        1500,
			TitleMs:          1200,
			TitleOverlapMs:   1000,
			SubtextMs:        1000,
			SubtextOverlapMs: 800,
			ButtonMs:         1000,
			ButtonOverlapMs:  600,
			ButtonEase:       "back.out(1.7)",
			OpenMs:           1200,
			OpenEase:         "power2.in",

			ParallaxGain:      20,
			ParallaxSmoothing: 0.05,

			FloatingDots: 20,
			DotSize:      "[2 6]",
			DotAmplitude: "[10 50]",
			DotPeriod:    "[10 20]",
			DotColor:     "pink",

			Stars: StarConfig{
				Count:         60,
				Size:          "[1 3]",
				Speed:         "[-12 12]",
				Opacity:       "[0.3 0.9]",
				Color:         "white",
				Lifetime:      "[6 12]",
				LinkThreshold: 140,
			},
			Meteors: EmitterConfig{
				SpawnIntervalMs: 4000,
				MaxConcurrent:   3,
				Travel:          "[1 2]",
				Drift:           "[-600 -300]",
			},

			MagnetRadius:    120,
			MagnetGain:      0.3,
			MagnetSmoothing: 0.15,
			HoverScale:      1.1,
			HoverMs:         300,

			AccentColor: "#ff4d6d",
			TextColor:   "lavenderblush",
		},
		Letter: LetterConfig{
			Heading: "My Dearest",
			Paragraphs: []string{
				"Every day with you feels like the first warm morning of spring.",
				"You turned ordinary moments into memories I replay when the world is quiet.",
				"Thank you for your patience, your laughter, and the way you listen.",
				"Wherever the road goes next, I want to walk it beside you.",
			},
			Signature: "Forever yours",

			CardMs:             1500,
			CardEase:           "power3.out",
			CardThreshold:      0.2,
			ParagraphMs:        1000,
			ParagraphEase:      "power2.out",
			ParagraphStaggerMs: 200,
			ParagraphThreshold: 0.15,

			Petals: EmitterConfig{
				SpawnIntervalMs: 1500,
				MaxConcurrent:   25,
				Travel:          "[10 20]",
				Drift:           "[-150 150]",
			},
			Petal: ParticleLook{
				Glyph:   "petal",
				Size:    "[10 30]",
				Opacity: "[0.2 0.8]",
				Spin:    "[0 720]",
				Colors:  []string{"pink", "lightpink", "#ffc0cb"},
			},

			TiltMaxAngle:  10,
			TiltSmoothing: 0.1,

			CardColor: "oldlace",
			InkColor:  "#4a2c2a",
		},
	}
}
