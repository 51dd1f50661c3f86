package vulkan

import (
	"fmt"
	stdmath "math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/cala/engine/math"
)

type Swapchain struct {
	ImageFormat       vk.SurfaceFormat
	Extent            vk.Extent2D
	MaxFramesInFlight uint32
	Handle            vk.Swapchain
	Images            []vk.Image
	// BGRA is set when the images store blue first and frames must be
	// swizzled on upload.
	BGRA bool
}

type SwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// chooseSurfaceFormat prefers 8 bit RGBA, then 8 bit BGRA, then whatever the
// surface lists first.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, bool) {
	for _, f := range formats {
		if f.Format == vk.FormatR8g8b8a8Unorm && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f, false
		}
	}
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Unorm && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f, true
		}
	}
	f := formats[0]
	return f, f.Format == vk.FormatB8g8r8a8Unorm || f.Format == vk.FormatB8g8r8a8Srgb
}

func choosePresentMode(modes []vk.PresentMode, vsync bool) vk.PresentMode {
	if vsync {
		return vk.PresentModeFifo
	}
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

func chooseExtent(caps vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != stdmath.MaxUint32 {
		return caps.CurrentExtent
	}
	// Clamp to the value allowed by the GPU.
	return vk.Extent2D{
		Width:  math.Clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: math.Clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// CreateSwapchain creates a swapchain whose images can be written by transfer
// commands.
func CreateSwapchain(context *Context, width, height uint32, vsync bool, old vk.Swapchain) (*Swapchain, error) {
	support, err := QuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface)
	if err != nil {
		return nil, err
	}
	if len(support.Formats) == 0 {
		return nil, fmt.Errorf("surface reports no formats")
	}
	context.Device.SwapchainSupport = support
	caps := support.Capabilities

	if vk.ImageUsageFlagBits(caps.SupportedUsageFlags)&vk.ImageUsageTransferDstBit == 0 {
		return nil, fmt.Errorf("surface images cannot be used as transfer destination")
	}

	swapchain := &Swapchain{MaxFramesInFlight: 2}
	swapchain.ImageFormat, swapchain.BGRA = chooseSurfaceFormat(support.Formats)
	swapchain.Extent = chooseExtent(caps, width, height)

	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageTransferDstBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      choosePresentMode(support.PresentModes, vsync),
		Clipped:          vk.True,
		OldSwapchain:     old,
	}

	// Setup the queue family indices
	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{
			context.Device.GraphicsQueueIndex,
			context.Device.PresentQueueIndex,
		}
	}

	var handle vk.Swapchain
	if err := check("vkCreateSwapchainKHR", vk.CreateSwapchain(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle)); err != nil {
		return nil, err
	}
	swapchain.Handle = handle

	var count uint32
	if err := check("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(context.Device.LogicalDevice, handle, &count, nil)); err != nil {
		vk.DestroySwapchain(context.Device.LogicalDevice, handle, context.Allocator)
		return nil, err
	}
	swapchain.Images = make([]vk.Image, count)
	if err := check("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(context.Device.LogicalDevice, handle, &count, swapchain.Images)); err != nil {
		vk.DestroySwapchain(context.Device.LogicalDevice, handle, context.Allocator)
		return nil, err
	}

	context.journal.Debug("swapchain created", "width", swapchain.Extent.Width, "height", swapchain.Extent.Height, "images", count, "bgra", swapchain.BGRA)
	return swapchain, nil
}

// Destroy releases the swapchain. Its images are owned by it and go with it.
func (vs *Swapchain) Destroy(context *Context) {
	if vs.Handle == nil {
		return
	}
	vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
	vs.Handle = nil
	vs.Images = nil
}
