package longview

import "runtime"

// Platform represents the current operating system/platform
type Platform string

const (
	PlatformMacOS   Platform = "darwin"
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformLinux   Platform = "linux"
	PlatformWindows Platform = "windows"
	PlatformWeb     Platform = "js"
	PlatformUnknown Platform = "unknown"
)

// CurrentPlatform returns the platform the process is running on
func CurrentPlatform() Platform {
	return platformFor(runtime.GOOS)
}

func platformFor(goos string) Platform {
	switch goos {
	case "darwin":
		return PlatformMacOS
	case "ios":
		return PlatformIOS
	case "android":
		return PlatformAndroid
	case "linux":
		return PlatformLinux
	case "windows":
		return PlatformWindows
	case "js":
		return PlatformWeb
	default:
		return PlatformUnknown
	}
}

// IsMobile returns true if running on iOS or Android
func (p Platform) IsMobile() bool {
	return p == PlatformIOS || p == PlatformAndroid
}

// IsDesktop returns true if running on macOS, Linux, or Windows
func (p Platform) IsDesktop() bool {
	return p == PlatformMacOS || p == PlatformLinux || p == PlatformWindows
}

// IsMobile returns true if the current platform is iOS or Android
func IsMobile() bool {
	return CurrentPlatform().IsMobile()
}

// IsDesktop returns true if the current platform is macOS, Linux, or Windows
func IsDesktop() bool {
	return CurrentPlatform().IsDesktop()
}

// DefaultTouchSlop is the drag threshold in pixels for p. Mobile screens
// report device pixels at 2-3x density, so the slop is wider there.
func (p Platform) DefaultTouchSlop() float32 {
	if p.IsMobile() {
		return 24
	}
	return 8
}
