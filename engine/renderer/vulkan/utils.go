package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

var resultNames = map[vk.Result]string{
	vk.Success:                   "VK_SUCCESS",
	vk.NotReady:                  "VK_NOT_READY",
	vk.Timeout:                   "VK_TIMEOUT",
	vk.Incomplete:                "VK_INCOMPLETE",
	vk.Suboptimal:                "VK_SUBOPTIMAL_KHR",
	vk.ErrorOutOfHostMemory:      "VK_ERROR_OUT_OF_HOST_MEMORY",
	vk.ErrorOutOfDeviceMemory:    "VK_ERROR_OUT_OF_DEVICE_MEMORY",
	vk.ErrorInitializationFailed: "VK_ERROR_INITIALIZATION_FAILED",
	vk.ErrorDeviceLost:           "VK_ERROR_DEVICE_LOST",
	vk.ErrorMemoryMapFailed:      "VK_ERROR_MEMORY_MAP_FAILED",
	vk.ErrorLayerNotPresent:      "VK_ERROR_LAYER_NOT_PRESENT",
	vk.ErrorExtensionNotPresent:  "VK_ERROR_EXTENSION_NOT_PRESENT",
	vk.ErrorFeatureNotPresent:    "VK_ERROR_FEATURE_NOT_PRESENT",
	vk.ErrorIncompatibleDriver:   "VK_ERROR_INCOMPATIBLE_DRIVER",
	vk.ErrorFormatNotSupported:   "VK_ERROR_FORMAT_NOT_SUPPORTED",
	vk.ErrorSurfaceLost:          "VK_ERROR_SURFACE_LOST_KHR",
	vk.ErrorNativeWindowInUse:    "VK_ERROR_NATIVE_WINDOW_IN_USE_KHR",
	vk.ErrorOutOfDate:            "VK_ERROR_OUT_OF_DATE_KHR",
}

func ResultString(result vk.Result) string {
	if s, ok := resultNames[result]; ok {
		return s
	}
	return fmt.Sprintf("VkResult(%d)", int32(result))
}

// ResultError is a failed Vulkan call.
type ResultError struct {
	Call   string
	Result vk.Result
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Call, ResultString(e.Result))
}

// check turns a non-success result into a *ResultError.
func check(call string, res vk.Result) error {
	if res == vk.Success {
		return nil
	}
	return &ResultError{Call: call, Result: res}
}

// DeviceLost reports whether err came from a lost device or surface, after
// which the presenter cannot recover.
func DeviceLost(err error) bool {
	re, ok := err.(*ResultError)
	return ok && (re.Result == vk.ErrorDeviceLost || re.Result == vk.ErrorSurfaceLost)
}

const nul = "\x00"

// SafeString terminates s with a NUL byte, as the C API expects.
func SafeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != 0 {
		return s + nul
	}
	return s
}

func SafeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = SafeString(list[i])
	}
	return out
}

// cString trims a fixed size C char array at its first NUL.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
