package vulkan

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
)

type Device struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	SwapchainSupport   SwapchainSupportInfo
	GraphicsQueueIndex uint32
	PresentQueueIndex  uint32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
}

type queueFamilyInfo struct {
	graphics, present       uint32
	hasGraphics, hasPresent bool
}

// CreateDevice selects a physical device able to present to the context's
// surface and creates the logical device, its queues and a command pool.
func CreateDevice(context *Context) error {
	device, err := selectPhysicalDevice(context)
	if err != nil {
		return err
	}
	context.Device = device
	context.journal.Debug("creating logical device")

	// NOTE: Do not create additional queues for shared indices.
	indices := []uint32{device.GraphicsQueueIndex}
	if device.PresentQueueIndex != device.GraphicsQueueIndex {
		indices = append(indices, device.PresentQueueIndex)
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i, index := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: index,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	if hasDeviceExtension(device.PhysicalDevice, "VK_KHR_portability_subset") {
		context.journal.Debug("adding required extension 'VK_KHR_portability_subset'")
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: SafeStrings(extensionNames),
	}

	var logical vk.Device
	if err := check("vkCreateDevice", vk.CreateDevice(device.PhysicalDevice, &deviceCreateInfo, context.Allocator, &logical)); err != nil {
		return err
	}
	device.LogicalDevice = logical

	var graphicsQueue, presentQueue vk.Queue
	vk.GetDeviceQueue(logical, device.GraphicsQueueIndex, 0, &graphicsQueue)
	vk.GetDeviceQueue(logical, device.PresentQueueIndex, 0, &presentQueue)
	device.GraphicsQueue, device.PresentQueue = graphicsQueue, presentQueue

	// Create command pool for graphics queue.
	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: device.GraphicsQueueIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if err := check("vkCreateCommandPool", vk.CreateCommandPool(logical, &poolCreateInfo, context.Allocator, &pool)); err != nil {
		vk.DestroyDevice(logical, context.Allocator)
		device.LogicalDevice = nil
		return err
	}
	device.GraphicsCommandPool = pool

	context.journal.Info("logical device created", "gpu", cString(device.Properties.DeviceName[:]))
	return nil
}

func DestroyDevice(context *Context) {
	device := context.Device
	if device == nil || device.LogicalDevice == nil {
		return
	}
	vk.DestroyCommandPool(device.LogicalDevice, device.GraphicsCommandPool, context.Allocator)
	vk.DestroyDevice(device.LogicalDevice, context.Allocator)
	device.LogicalDevice = nil
	device.GraphicsQueue = nil
	device.PresentQueue = nil
	// Physical devices are not destroyed.
	device.PhysicalDevice = nil
}

// QuerySwapchainSupport reads the surface capabilities, formats and present
// modes of a physical device.
func QuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface) (SwapchainSupportInfo, error) {
	var info SwapchainSupportInfo
	if err := check("vkGetPhysicalDeviceSurfaceCapabilitiesKHR",
		vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &info.Capabilities)); err != nil {
		return info, err
	}
	info.Capabilities.Deref()
	info.Capabilities.CurrentExtent.Deref()
	info.Capabilities.MinImageExtent.Deref()
	info.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	if err := check("vkGetPhysicalDeviceSurfaceFormatsKHR",
		vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil)); err != nil {
		return info, err
	}
	if formatCount > 0 {
		info.Formats = make([]vk.SurfaceFormat, formatCount)
		if err := check("vkGetPhysicalDeviceSurfaceFormatsKHR",
			vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, info.Formats)); err != nil {
			return info, err
		}
		for i := range info.Formats {
			info.Formats[i].Deref()
		}
	}

	var modeCount uint32
	if err := check("vkGetPhysicalDeviceSurfacePresentModesKHR",
		vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, nil)); err != nil {
		return info, err
	}
	if modeCount > 0 {
		info.PresentModes = make([]vk.PresentMode, modeCount)
		if err := check("vkGetPhysicalDeviceSurfacePresentModesKHR",
			vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, info.PresentModes)); err != nil {
			return info, err
		}
	}
	return info, nil
}

func selectPhysicalDevice(context *Context) (*Device, error) {
	var count uint32
	if err := check("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(context.Instance, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("no devices which support Vulkan were found")
	}
	physicalDevices := make([]vk.PhysicalDevice, count)
	if err := check("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(context.Instance, &count, physicalDevices)); err != nil {
		return nil, err
	}

	for _, pd := range physicalDevices {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(pd, &properties)
		properties.Deref()
		name := cString(properties.DeviceName[:])

		queues, err := findQueueFamilies(pd, context.Surface)
		if err != nil || !queues.hasGraphics || !queues.hasPresent {
			context.journal.Debug("device lacks graphics or present queue, skipping", "gpu", name)
			continue
		}
		if !hasDeviceExtension(pd, vk.KhrSwapchainExtensionName) {
			context.journal.Debug("device lacks swapchain support, skipping", "gpu", name)
			continue
		}
		support, err := QuerySwapchainSupport(pd, context.Surface)
		if err != nil || len(support.Formats) == 0 || len(support.PresentModes) == 0 {
			context.journal.Debug("required swapchain support not present, skipping", "gpu", name)
			continue
		}

		context.journal.Info("selected device", "gpu", name, "type", deviceTypeName(properties.DeviceType),
			"api", fmt.Sprintf("%d.%d.%d",
				vk.Version(properties.ApiVersion).Major(),
				vk.Version(properties.ApiVersion).Minor(),
				vk.Version(properties.ApiVersion).Patch()))

		return &Device{
			PhysicalDevice:     pd,
			SwapchainSupport:   support,
			GraphicsQueueIndex: queues.graphics,
			PresentQueueIndex:  queues.present,
			Properties:         properties,
		}, nil
	}
	return nil, fmt.Errorf("no physical devices were found which meet the requirements")
}

func findQueueFamilies(device vk.PhysicalDevice, surface vk.Surface) (queueFamilyInfo, error) {
	var info queueFamilyInfo
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, families)

	for i := range families {
		families[i].Deref()
		index := uint32(i)
		if !info.hasGraphics && vk.QueueFlagBits(families[i].QueueFlags)&vk.QueueGraphicsBit != 0 {
			info.graphics, info.hasGraphics = index, true
		}

		var supportsPresent vk.Bool32
		if err := check("vkGetPhysicalDeviceSurfaceSupportKHR",
			vk.GetPhysicalDeviceSurfaceSupport(device, index, surface, &supportsPresent)); err != nil {
			return info, err
		}
		if supportsPresent == vk.True {
			// Prefer a family that does both.
			if !info.hasPresent || (info.hasGraphics && info.graphics == index) {
				info.present, info.hasPresent = index, true
			}
		}
	}
	return info, nil
}

func hasDeviceExtension(device vk.PhysicalDevice, name string) bool {
	var count uint32
	if vk.EnumerateDeviceExtensionProperties(device, "", &count, nil) != vk.Success || count == 0 {
		return false
	}
	extensions := make([]vk.ExtensionProperties, count)
	if vk.EnumerateDeviceExtensionProperties(device, "", &count, extensions) != vk.Success {
		return false
	}
	for i := range extensions {
		extensions[i].Deref()
		if cString(extensions[i].ExtensionName[:]) == strings.TrimRight(name, nul) {
			return true
		}
	}
	return false
}

func deviceTypeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "unknown"
	}
}
