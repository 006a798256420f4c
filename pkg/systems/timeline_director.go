package systems

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/utils"
)

var (
	// ErrUnresolvedAnchor 锚点引用了不存在或尚未声明的步骤
	ErrUnresolvedAnchor = errors.New("unresolved timeline anchor")
	// ErrDuplicateStep 步骤ID重复
	ErrDuplicateStep = errors.New("duplicate timeline step id")
	// ErrInvalidDuration 步骤时长为负
	ErrInvalidDuration = errors.New("invalid timeline step duration")
)

// AnchorKind 步骤起始时间的参照点
type AnchorKind int

const (
	// AnchorOrigin 时间轴起点
	AnchorOrigin AnchorKind = iota
	// AnchorPreviousEnd 上一步结束时
	AnchorPreviousEnd
	// AnchorPreviousStart 上一步开始时
	AnchorPreviousStart
	// AnchorStepEnd 指定步骤结束时
	AnchorStepEnd
	// AnchorStepStart 指定步骤开始时
	AnchorStepStart
)

func (k AnchorKind) String() string {
	switch k {
	case AnchorOrigin:
		return "origin"
	case AnchorPreviousEnd:
		return "previous.end"
	case AnchorPreviousStart:
		return "previous.start"
	case AnchorStepEnd:
		return "step.end"
	case AnchorStepStart:
		return "step.start"
	default:
		return "unknown"
	}
}

// Offset 步骤的起始偏移：参照点 + 有符号增量，负增量表示与参照步骤重叠
type Offset struct {
	Kind  AnchorKind
	Step  string
	Delta time.Duration
}

// AtOrigin 相对时间轴起点
func AtOrigin(d time.Duration) Offset { return Offset{Kind: AnchorOrigin, Delta: d} }

// AfterPrevious 上一步结束后 d 开始（d 为负时提前开始）
func AfterPrevious(d time.Duration) Offset { return Offset{Kind: AnchorPreviousEnd, Delta: d} }

// WithPrevious 与上一步同时开始，再偏移 d
func WithPrevious(d time.Duration) Offset { return Offset{Kind: AnchorPreviousStart, Delta: d} }

// AfterStep 指定步骤结束后 d 开始
func AfterStep(id string, d time.Duration) Offset {
	return Offset{Kind: AnchorStepEnd, Step: id, Delta: d}
}

// WithStep 与指定步骤同时开始，再偏移 d
func WithStep(id string, d time.Duration) Offset {
	return Offset{Kind: AnchorStepStart, Step: id, Delta: d}
}

// TimelineStep 一个动画步骤
type TimelineStep struct {
	ID       string
	Effect   string // 目标效果ID，仅用于日志和调试
	Offset   Offset
	Duration time.Duration
	Ease     string // 为空时使用时间轴默认缓动
	// 以下回调均可为空
	OnStart    func()
	OnUpdate   func(progress float64) // progress 为缓动后的进度
	OnComplete func()
}

// TimelineOptions 时间轴选项
type TimelineOptions struct {
	Name        string
	DefaultEase string
	// OnComplete 每次未被取消的播放结束时调用一次
	OnComplete func()
}

// PlayOptions 播放选项
type PlayOptions struct {
	// Restart 正在播放时从头重新播放（默认忽略重复的 Play）
	Restart bool
	// TimeScale 播放速度倍率，<=0 视为 1
	TimeScale float64
}

type resolvedStep struct {
	TimelineStep
	start time.Duration
	end   time.Duration
	ease  utils.EaseFunc
}

type stepRun struct {
	started  bool
	finished bool
}

// Timeline 构建完成的时间轴句柄，实现 game.Cancelable
type Timeline struct {
	name       string
	clock      *game.Clock
	director   *TimelineDirector
	steps      []resolvedStep
	index      map[string]int
	duration   time.Duration
	onComplete func()

	// 当前播放状态
	playing   bool
	done      bool
	runStart  time.Duration
	scale     float64
	runs      []stepRun
	timers    []*game.Timer
	frame     *game.FrameCallback
	playCount int
}

// TimelineDirector 构建和播放时间轴
//
// 偏移在 Build 时全部解析完毕，配置错误不会留到 Play。
// 播放时每个步骤的开始和结束各注册一个时钟定时器，
// 进度回调由每帧回调驱动，时间轴完成定时器排在所有步骤之后。
type TimelineDirector struct {
	clock  *game.Clock
	active map[*Timeline]struct{}
}

// NewTimelineDirector 创建时间轴导演
func NewTimelineDirector(clock *game.Clock) *TimelineDirector {
	return &TimelineDirector{
		clock:  clock,
		active: make(map[*Timeline]struct{}),
	}
}

// Build 解析步骤偏移并校验配置
func (d *TimelineDirector) Build(steps []TimelineStep, opts TimelineOptions) (*Timeline, error) {
	name := opts.Name
	if name == "" {
		name = "timeline"
	}

	tl := &Timeline{
		name:       name,
		clock:      d.clock,
		director:   d,
		steps:      make([]resolvedStep, 0, len(steps)),
		index:      make(map[string]int, len(steps)),
		onComplete: opts.OnComplete,
	}

	for i, step := range steps {
		label := step.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if step.ID != "" {
			if _, dup := tl.index[step.ID]; dup {
				return nil, fmt.Errorf("%s: step %q: %w", name, step.ID, ErrDuplicateStep)
			}
		}
		if step.Duration < 0 {
			return nil, fmt.Errorf("%s: step %s duration %v: %w", name, label, step.Duration, ErrInvalidDuration)
		}

		easeID := step.Ease
		if easeID == "" {
			easeID = opts.DefaultEase
		}
		ease, err := utils.LookupEase(easeID)
		if err != nil {
			return nil, fmt.Errorf("%s: step %s: %w", name, label, err)
		}

		anchor, err := tl.resolveAnchor(step.Offset)
		if err != nil {
			return nil, fmt.Errorf("%s: step %s: %w", name, label, err)
		}
		start := anchor + step.Offset.Delta
		if start < 0 {
			start = 0
		}
		end := start + step.Duration

		if step.ID != "" {
			tl.index[step.ID] = len(tl.steps)
		}
		tl.steps = append(tl.steps, resolvedStep{TimelineStep: step, start: start, end: end, ease: ease})
		if end > tl.duration {
			tl.duration = end
		}
	}

	log.Printf("[TimelineDirector] 构建时间轴 %s: %d 步, 总时长 %v", name, len(tl.steps), tl.duration)
	return tl, nil
}

// resolveAnchor 只能引用已经声明过的步骤
func (tl *Timeline) resolveAnchor(off Offset) (time.Duration, error) {
	switch off.Kind {
	case AnchorOrigin:
		return 0, nil
	case AnchorPreviousEnd, AnchorPreviousStart:
		if len(tl.steps) == 0 {
			return 0, nil
		}
		prev := tl.steps[len(tl.steps)-1]
		if off.Kind == AnchorPreviousEnd {
			return prev.end, nil
		}
		return prev.start, nil
	case AnchorStepEnd, AnchorStepStart:
		i, ok := tl.index[off.Step]
		if !ok {
			return 0, fmt.Errorf("%s %q: %w", off.Kind, off.Step, ErrUnresolvedAnchor)
		}
		if off.Kind == AnchorStepEnd {
			return tl.steps[i].end, nil
		}
		return tl.steps[i].start, nil
	default:
		return 0, fmt.Errorf("anchor kind %d: %w", off.Kind, ErrUnresolvedAnchor)
	}
}

// Play 播放时间轴，返回是否真正开始了一次播放
// 正在播放时再次调用是空操作，除非 Restart 为 true
func (d *TimelineDirector) Play(tl *Timeline, opts PlayOptions) bool {
	if tl == nil {
		return false
	}
	if tl.playing {
		if !opts.Restart {
			return false
		}
		tl.stop()
		log.Printf("[TimelineDirector] 重新播放时间轴 %s", tl.name)
	}
	tl.start(opts)
	return true
}

// Cancel 取消播放，之后不会再有任何回调
func (d *TimelineDirector) Cancel(tl *Timeline) bool {
	if tl == nil {
		return false
	}
	return tl.Cancel()
}

// ActiveCount 返回正在播放的时间轴数量
func (d *TimelineDirector) ActiveCount() int {
	return len(d.active)
}

// CancelAll 取消所有正在播放的时间轴
func (d *TimelineDirector) CancelAll() int {
	n := 0
	for tl := range d.active {
		if tl.Cancel() {
			n++
		}
	}
	return n
}

func (tl *Timeline) start(opts PlayOptions) {
	scale := opts.TimeScale
	if scale <= 0 {
		scale = 1
	}
	tl.scale = scale
	tl.playing = true
	tl.done = false
	tl.playCount++
	tl.runStart = tl.clock.Now()
	tl.runs = make([]stepRun, len(tl.steps))
	tl.timers = tl.timers[:0]
	tl.director.active[tl] = struct{}{}

	for i := range tl.steps {
		i := i
		s := &tl.steps[i]
		tl.timers = append(tl.timers,
			tl.clock.AfterFunc(tl.scaled(s.start), func() { tl.startStep(i) }),
			tl.clock.AfterFunc(tl.scaled(s.end), func() { tl.finishStep(i) }),
		)
	}
	// 在所有步骤定时器之后注册，同一时刻到期时最后触发
	tl.timers = append(tl.timers, tl.clock.AfterFunc(tl.scaled(tl.duration), tl.finish))
	tl.frame = tl.clock.OnFrame(tl.update)

	log.Printf("[TimelineDirector] 播放时间轴 %s (第 %d 次, 倍率 %.2f)", tl.name, tl.playCount, scale)
}

func (tl *Timeline) scaled(d time.Duration) time.Duration {
	if tl.scale == 1 {
		return d
	}
	return time.Duration(float64(d) / tl.scale)
}

func (tl *Timeline) startStep(i int) {
	s := &tl.steps[i]
	tl.runs[i].started = true
	if s.OnStart != nil {
		s.OnStart()
	}
	if s.OnUpdate != nil && tl.playing {
		s.OnUpdate(s.ease(0))
	}
}

func (tl *Timeline) finishStep(i int) {
	s := &tl.steps[i]
	if !tl.runs[i].started {
		tl.startStep(i)
	}
	if !tl.playing {
		return
	}
	tl.runs[i].finished = true
	if s.OnUpdate != nil {
		s.OnUpdate(s.ease(1))
	}
	if s.OnComplete != nil && tl.playing {
		s.OnComplete()
	}
}

// update 每帧为进行中的步骤计算缓动进度
func (tl *Timeline) update(time.Duration) {
	if !tl.playing {
		return
	}
	elapsed := time.Duration(float64(tl.clock.Now()-tl.runStart) * tl.scale)
	for i := range tl.steps {
		run := tl.runs[i]
		if !run.started || run.finished {
			continue
		}
		s := &tl.steps[i]
		if s.OnUpdate == nil || s.Duration <= 0 {
			continue
		}
		p := utils.Clamp(float64(elapsed-s.start)/float64(s.Duration), 0, 1)
		s.OnUpdate(s.ease(p))
		if !tl.playing {
			return
		}
	}
}

func (tl *Timeline) finish() {
	if !tl.playing {
		return
	}
	tl.release()
	tl.done = true
	log.Printf("[TimelineDirector] 时间轴 %s 完成", tl.name)
	if tl.onComplete != nil {
		tl.onComplete()
	}
}

// stop 结束当前播放并释放所有时钟注册
func (tl *Timeline) stop() {
	for _, t := range tl.timers {
		t.Cancel()
	}
	tl.release()
}

func (tl *Timeline) release() {
	tl.playing = false
	tl.timers = tl.timers[:0]
	if tl.frame != nil {
		tl.frame.Cancel()
		tl.frame = nil
	}
	delete(tl.director.active, tl)
}

// Cancel 取消当前播放；未在播放时返回 false
func (tl *Timeline) Cancel() bool {
	if !tl.playing {
		return false
	}
	tl.stop()
	log.Printf("[TimelineDirector] 取消时间轴 %s", tl.name)
	return true
}

// Active 是否正在播放
func (tl *Timeline) Active() bool {
	return tl.playing
}

// Playing 是否正在播放
func (tl *Timeline) Playing() bool {
	return tl.playing
}

// Done 最近一次播放是否自然结束
func (tl *Timeline) Done() bool {
	return tl.done
}

// Name 返回时间轴名称
func (tl *Timeline) Name() string {
	return tl.name
}

// Duration 返回时间轴总时长（不受播放倍率影响）
func (tl *Timeline) Duration() time.Duration {
	return tl.duration
}

// StepStart 返回步骤解析后的开始时间
func (tl *Timeline) StepStart(id string) (time.Duration, bool) {
	i, ok := tl.index[id]
	if !ok {
		return 0, false
	}
	return tl.steps[i].start, true
}

// StepEnd 返回步骤解析后的结束时间
func (tl *Timeline) StepEnd(id string) (time.Duration, bool) {
	i, ok := tl.index[id]
	if !ok {
		return 0, false
	}
	return tl.steps[i].end, true
}
