// Package utils 提供通用工具函数
package utils

// WheelStep 滚轮每格对应的滚动距离（像素）
const WheelStep = 60
