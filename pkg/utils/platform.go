//go:build !mobile

package utils

import "os"

// TouchEmulateEnv 设置为 1 时桌面端按触屏设备处理（用于本地调试）
const TouchEmulateEnv = "HEARTBLOOM_TOUCH_EMULATE"

// IsMobile 检测当前是否在触屏设备上运行
// 桌面端编译时返回 false，除非设置了 TouchEmulateEnv
// 触屏设备上倾斜效果关闭
func IsMobile() bool {
	return os.Getenv(TouchEmulateEnv) == "1"
}
