package components

import "time"

// EmitterComponent 粒子系统的发射状态
//
// 由 ParticleSystem 持有并维护，Configure 写入发射参数，
// 发射计时器每次触发时根据 SpawnMaxActive 判断是否丢弃本次请求。
type EmitterComponent struct {
	// 发射参数
	SpawnInterval  time.Duration // 两次发射之间的间隔
	SpawnMaxActive int           // 同时存活的粒子上限

	// 发射状态
	Active bool // 发射计时器是否在运行

	// 统计
	TotalLaunched int // 已生成的粒子总数
	TotalDropped  int // 因达到上限被丢弃的发射请求
	TotalRetired  int // 已退役的粒子总数
}
