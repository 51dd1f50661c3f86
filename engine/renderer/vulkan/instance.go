package vulkan

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/cala/engine/core"
)

const validationLayer = "VK_LAYER_KHRONOS_validation"

var (
	loaderOnce sync.Once
	loaderErr  error
)

// loadVulkan points the bindings at the loader found by GLFW. GLFW must be
// initialized.
func loadVulkan() error {
	loaderOnce.Do(func() {
		procAddr := glfw.GetVulkanGetInstanceProcAddress()
		if procAddr == nil {
			loaderErr = fmt.Errorf("vulkan loader not found: GetInstanceProcAddress is nil")
			return
		}
		vk.SetGetInstanceProcAddr(procAddr)
		loaderErr = vk.Init()
	})
	return loaderErr
}

// createInstance creates the Vulkan instance with the extensions the window
// needs. With debug set, the validation layer is enabled when available and
// its reports go to the journal.
func createInstance(context *Context, window *glfw.Window, appName string, debug bool) error {
	if err := loadVulkan(); err != nil {
		return err
	}

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   SafeString(appName),
		PEngineName:        SafeString("Cala"),
	}

	extensions := window.GetRequiredInstanceExtensions()
	var flags vk.InstanceCreateFlags
	if runtime.GOOS == "darwin" {
		extensions = append(extensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		flags |= 1
	}

	var layers []string
	if debug {
		if hasInstanceLayer(validationLayer) {
			layers = append(layers, validationLayer)
		} else {
			context.journal.Warn("validation layer requested but not available", "layer", validationLayer)
		}
		extensions = append(extensions, vk.ExtDebugReportExtensionName)
	}
	context.journal.Debug("vulkan instance", "extensions", extensions, "layers", layers)

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		Flags:                   flags,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: SafeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     SafeStrings(layers),
	}

	var instance vk.Instance
	if err := check("vkCreateInstance", vk.CreateInstance(&createInfo, context.Allocator, &instance)); err != nil {
		return err
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, context.Allocator)
		return err
	}
	context.Instance = instance

	if debug {
		journal := context.journal
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType: vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: func(flags vk.DebugReportFlags, _ vk.DebugReportObjectType, _ uint64, _ uint64, code int32, prefix string, msg string, _ unsafe.Pointer) vk.Bool32 {
				debugReport(journal, flags, code, prefix, msg)
				return vk.Bool32(vk.False)
			},
		}
		var callback vk.DebugReportCallback
		if err := check("vkCreateDebugReportCallbackEXT", vk.CreateDebugReportCallback(instance, &debugCreateInfo, context.Allocator, &callback)); err != nil {
			context.journal.Warn("vulkan debug report unavailable", "err", err)
		} else {
			context.debugCallback = callback
		}
	}

	context.journal.Debug("vulkan instance created")
	return nil
}

func destroyInstance(context *Context) {
	if context.Instance == nil {
		return
	}
	if context.debugCallback != nil {
		vk.DestroyDebugReportCallback(context.Instance, context.debugCallback, context.Allocator)
		context.debugCallback = nil
	}
	vk.DestroyInstance(context.Instance, context.Allocator)
	context.Instance = nil
}

func hasInstanceLayer(name string) bool {
	var count uint32
	if vk.EnumerateInstanceLayerProperties(&count, nil) != vk.Success || count == 0 {
		return false
	}
	layers := make([]vk.LayerProperties, count)
	if vk.EnumerateInstanceLayerProperties(&count, layers) != vk.Success {
		return false
	}
	for i := range layers {
		layers[i].Deref()
		if cString(layers[i].LayerName[:]) == name {
			return true
		}
	}
	return false
}

func debugReport(journal *core.Journal, flags vk.DebugReportFlags, code int32, prefix, msg string) {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		journal.Error(msg, "layer", prefix, "code", code)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		journal.Warn(msg, "layer", prefix, "code", code)
	default:
		journal.Debug(msg, "layer", prefix, "code", code)
	}
}
