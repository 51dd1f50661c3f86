package vulkan

import (
	"fmt"
	"image"
	stdmath "math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/cala/engine/core"
	"github.com/spaghettifunk/cala/engine/platform"
)

type PresenterConfig struct {
	AppName string
	VSync   bool
	Debug   bool
}

type frameSync struct {
	commandBuffer  *CommandBuffer
	imageAvailable vk.Semaphore
	renderComplete vk.Semaphore
	inFlight       *Fence
	staging        *Buffer
}

// Presenter copies CPU rendered RGBA frames into the swapchain of a window.
type Presenter struct {
	cfg     PresenterConfig
	window  *platform.Window
	context *Context
	frames  []*frameSync

	currentFrame uint32
	FrameNumber  uint64
	// set when the window is minimized and nothing can be presented
	suspended bool
}

func NewPresenter(window *platform.Window, cfg PresenterConfig, journal *core.Journal) (*Presenter, error) {
	if journal == nil {
		journal = core.DiscardJournal()
	}
	width, height := window.FramebufferSize()
	p := &Presenter{
		cfg:    cfg,
		window: window,
		context: &Context{
			FramebufferWidth:  uint32(width),
			FramebufferHeight: uint32(height),
			journal:           journal.With("component", "vulkan"),
		},
	}
	if err := p.initialize(); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *Presenter) initialize() error {
	ctx := p.context
	if err := createInstance(ctx, p.window.Window, p.cfg.AppName, p.cfg.Debug); err != nil {
		return err
	}

	surface, err := p.window.CreateWindowSurface(ctx.Instance, nil)
	if err != nil {
		return fmt.Errorf("vulkan surface creation failed: %w", err)
	}
	ctx.Surface = vk.SurfaceFromPointer(surface)

	if err := CreateDevice(ctx); err != nil {
		return err
	}

	sc, err := CreateSwapchain(ctx, ctx.FramebufferWidth, ctx.FramebufferHeight, p.cfg.VSync, nil)
	if err != nil {
		return err
	}
	ctx.Swapchain = sc

	p.frames = make([]*frameSync, sc.MaxFramesInFlight)
	for i := range p.frames {
		f, err := p.createFrame()
		if err != nil {
			return err
		}
		p.frames[i] = f
	}

	ctx.journal.Info("vulkan presenter initialized")
	return nil
}

func (p *Presenter) createFrame() (*frameSync, error) {
	ctx := p.context
	f := &frameSync{}

	cb, err := NewCommandBuffer(ctx, ctx.Device.GraphicsCommandPool)
	if err != nil {
		return nil, err
	}
	f.commandBuffer = cb

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	if err := check("vkCreateSemaphore", vk.CreateSemaphore(ctx.Device.LogicalDevice, &semaphoreCreateInfo, ctx.Allocator, &f.imageAvailable)); err != nil {
		return nil, err
	}
	if err := check("vkCreateSemaphore", vk.CreateSemaphore(ctx.Device.LogicalDevice, &semaphoreCreateInfo, ctx.Allocator, &f.renderComplete)); err != nil {
		return nil, err
	}

	// Created signaled so the first frame does not wait forever.
	fence, err := NewFence(ctx, true)
	if err != nil {
		return nil, err
	}
	f.inFlight = fence
	return f, nil
}

// Present uploads frame to the next swapchain image and queues it for display.
// Parts of the frame outside the window are cropped; window area not covered
// by the frame is cleared.
func (p *Presenter) Present(frame *image.RGBA) error {
	ctx := p.context

	if p.window.Resized() || p.suspended {
		if err := p.recreateSwapchain(); err != nil {
			return err
		}
		if p.suspended {
			return nil
		}
	}

	f := p.frames[p.currentFrame]
	if err := f.inFlight.Wait(ctx, stdmath.MaxUint64); err != nil {
		return err
	}

	var imageIndex uint32
	res := vk.AcquireNextImage(ctx.Device.LogicalDevice, ctx.Swapchain.Handle, stdmath.MaxUint64, f.imageAvailable, nil, &imageIndex)
	switch res {
	case vk.Success, vk.Suboptimal:
	case vk.ErrorOutOfDate:
		// Trigger swapchain recreation, then skip this frame.
		return p.recreateSwapchain()
	default:
		return check("vkAcquireNextImageKHR", res)
	}

	extent := ctx.Swapchain.Extent
	if err := p.upload(f, frame, extent); err != nil {
		return err
	}

	img := ctx.Swapchain.Images[imageIndex]
	cb := f.commandBuffer
	if err := cb.Begin(); err != nil {
		return err
	}
	cb.TransitionImage(img, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal,
		0, vk.AccessTransferWriteBit,
		vk.PipelineStageTopOfPipeBit, vk.PipelineStageTransferBit)
	cb.CopyBufferToImage(f.staging.Handle, img, extent.Width, extent.Height)
	cb.TransitionImage(img, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutPresentSrc,
		vk.AccessTransferWriteBit, 0,
		vk.PipelineStageTransferBit, vk.PipelineStageBottomOfPipeBit)
	if err := cb.End(); err != nil {
		return err
	}

	if err := f.inFlight.Reset(ctx); err != nil {
		return err
	}
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{f.imageAvailable},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageTransferBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{f.renderComplete},
	}
	if err := check("vkQueueSubmit", vk.QueueSubmit(ctx.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, f.inFlight.Handle)); err != nil {
		return err
	}
	cb.UpdateSubmitted()

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{f.renderComplete},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{ctx.Swapchain.Handle},
		PImageIndices:      []uint32{imageIndex},
	}
	res = vk.QueuePresent(ctx.Device.PresentQueue, &presentInfo)
	switch res {
	case vk.Success:
	case vk.Suboptimal, vk.ErrorOutOfDate:
		// Swapchain is out of date or suboptimal, recreate it for the next frame.
		if err := p.recreateSwapchain(); err != nil {
			return err
		}
	default:
		return check("vkQueuePresentKHR", res)
	}

	p.currentFrame = (p.currentFrame + 1) % uint32(len(p.frames))
	p.FrameNumber++
	return nil
}

func (p *Presenter) upload(f *frameSync, frame *image.RGBA, extent vk.Extent2D) error {
	size := uint64(extent.Width) * uint64(extent.Height) * 4
	if f.staging == nil || f.staging.Size != size {
		if f.staging != nil {
			f.staging.Destroy(p.context)
		}
		staging, err := NewStagingBuffer(p.context, size)
		if err != nil {
			f.staging = nil
			return err
		}
		f.staging = staging
	}
	CopyFrame(f.staging.Bytes(), int(extent.Width), int(extent.Height), frame, p.context.Swapchain.BGRA)
	return nil
}

func (p *Presenter) recreateSwapchain() error {
	ctx := p.context
	width, height := p.window.FramebufferSize()
	// Detect if the window is too small to be drawn to
	if width == 0 || height == 0 {
		p.suspended = true
		return nil
	}
	p.suspended = false

	// Wait for any operations to complete.
	if err := check("vkDeviceWaitIdle", vk.DeviceWaitIdle(ctx.Device.LogicalDevice)); err != nil {
		return err
	}

	ctx.FramebufferWidth, ctx.FramebufferHeight = uint32(width), uint32(height)
	old := ctx.Swapchain
	sc, err := CreateSwapchain(ctx, ctx.FramebufferWidth, ctx.FramebufferHeight, p.cfg.VSync, old.Handle)
	if err != nil {
		return err
	}
	old.Destroy(ctx)
	ctx.Swapchain = sc
	ctx.journal.Debug("swapchain recreated", "width", width, "height", height)
	return nil
}

// Destroy releases every Vulkan object in the opposite order of creation.
func (p *Presenter) Destroy() {
	ctx := p.context
	if ctx.Device != nil && ctx.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(ctx.Device.LogicalDevice)
		for _, f := range p.frames {
			if f == nil {
				continue
			}
			if f.staging != nil {
				f.staging.Destroy(ctx)
			}
			if f.inFlight != nil {
				f.inFlight.Destroy(ctx)
			}
			if f.imageAvailable != nil {
				vk.DestroySemaphore(ctx.Device.LogicalDevice, f.imageAvailable, ctx.Allocator)
			}
			if f.renderComplete != nil {
				vk.DestroySemaphore(ctx.Device.LogicalDevice, f.renderComplete, ctx.Allocator)
			}
			if f.commandBuffer != nil {
				f.commandBuffer.Free(ctx, ctx.Device.GraphicsCommandPool)
			}
		}
		p.frames = nil
		if ctx.Swapchain != nil {
			ctx.Swapchain.Destroy(ctx)
			ctx.Swapchain = nil
		}
		DestroyDevice(ctx)
	}
	if ctx.Surface != nil && ctx.Instance != nil {
		vk.DestroySurface(ctx.Instance, ctx.Surface, ctx.Allocator)
		ctx.Surface = nil
	}
	destroyInstance(ctx)
}

// CopyFrame writes src into dst, a tightly packed width x height image with 4
// bytes per pixel, cropping or clearing as needed. With bgra set the red and
// blue channels are swapped.
func CopyFrame(dst []byte, width, height int, src *image.RGBA, bgra bool) {
	clear(dst)
	if src == nil {
		return
	}
	b := src.Bounds()
	w := min(width, b.Dx())
	h := min(height, b.Dy())
	for y := 0; y < h; y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		row := src.Pix[off : off+w*4]
		out := dst[y*width*4 : y*width*4+w*4]
		if !bgra {
			copy(out, row)
			continue
		}
		for x := 0; x < w*4; x += 4 {
			out[x+0] = row[x+2]
			out[x+1] = row[x+1]
			out[x+2] = row[x+0]
			out[x+3] = row[x+3]
		}
	}
}
