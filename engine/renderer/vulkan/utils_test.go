package vulkan

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
)

func TestSafeString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "\x00"},
		{"VK_KHR_surface", "VK_KHR_surface\x00"},
		{"done\x00", "done\x00"},
	}
	for _, tt := range tests {
		if got := SafeString(tt.in); got != tt.want {
			t.Errorf("SafeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	in := []string{"a", "b"}
	out := SafeStrings(in)
	if in[0] != "a" || out[1] != "b\x00" {
		t.Errorf("SafeStrings modified input or produced %q", out)
	}
}

func TestCString(t *testing.T) {
	if got := cString([]byte{'g', 'p', 'u', 0, 'x'}); got != "gpu" {
		t.Errorf("cString() = %q", got)
	}
	if got := cString([]byte("full")); got != "full" {
		t.Errorf("cString() = %q", got)
	}
}

func TestCheck(t *testing.T) {
	if err := check("vkCreateFence", vk.Success); err != nil {
		t.Errorf("check(Success) = %v", err)
	}
	err := check("vkQueueSubmit", vk.ErrorDeviceLost)
	var re *ResultError
	if !errors.As(err, &re) || re.Call != "vkQueueSubmit" {
		t.Fatalf("check() = %v", err)
	}
	if err.Error() != "vkQueueSubmit failed: VK_ERROR_DEVICE_LOST" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !DeviceLost(err) {
		t.Error("DeviceLost() = false")
	}
	if DeviceLost(check("vkAcquireNextImageKHR", vk.ErrorOutOfDate)) {
		t.Error("out of date is recoverable")
	}
}
